package datatable

import "golang.org/x/text/cases"

func foldCaser() cases.Caser {
	return cases.Fold()
}

func foldForTest(s string) string {
	return cases.Fold().String(s)
}
