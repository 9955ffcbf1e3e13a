package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/shared"
)

var errInUse = shared.NewDomainError("INVALID_STATE", "Record is referenced by other records")

// translate maps gorm errors onto domain errors. It relies on gorm's
// TranslateError so that unique violations arrive as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errInUse
	}
	return err
}

// deleted reports ErrNotFound when a delete touched no rows.
func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type sourceCount struct {
	Source shared.Source
	N      int64
}

// countBySource groups the rows of model by their source column.
func countBySource(q *gorm.DB, model any) (map[shared.Source]int64, error) {
	var rows []sourceCount
	if err := q.Model(model).Select("source, COUNT(*) AS n").Group("source").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[shared.Source]int64, len(rows))
	for _, r := range rows {
		out[r.Source] = r.N
	}
	return out, nil
}
