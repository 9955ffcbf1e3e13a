package datatable

import "context"

// Fetcher produces one page of rows for a query.
type Fetcher[T any] func(ctx context.Context, q Query) (Result[T], error)

// Loader returns every candidate row of a locally evaluated table.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Source runs a normalized query against a backing store and returns the
// page rows plus the total number of matching rows.
type Source[T any] func(ctx context.Context, q Query) ([]T, int64, error)

// Local evaluates queries in process over the rows returned by load.
func Local[T any](t *Table[T], load Loader[T]) Fetcher[T] {
	return func(ctx context.Context, q Query) (Result[T], error) {
		rows, err := load(ctx)
		if err != nil {
			return Result[T]{}, err
		}
		return t.Apply(rows, q), nil
	}
}

// Delegate hands normalized queries to a server-side source instead of
// filtering locally.
func Delegate[T any](t *Table[T], src Source[T]) Fetcher[T] {
	return func(ctx context.Context, q Query) (Result[T], error) {
		q = q.Normalize(t.def)
		rows, total, err := src(ctx, q)
		if err != nil {
			return Result[T]{}, err
		}
		return NewResult(rows, total, q.Page, q.PageSize), nil
	}
}

// All runs q without pagination, e.g. for exports.
func (f Fetcher[T]) All(ctx context.Context, q Query) ([]T, error) {
	q.Page = 1
	q.PageSize = ShowAll
	res, err := f(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}
