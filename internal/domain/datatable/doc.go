// Package datatable implements the tabular view engine shared by every list
// screen: search, per-column filters, single-field sort, pagination and the
// per-user view settings (column order, visibility, widths, styles).
//
// Rows are typed: a Table[T] is built from Column[T] descriptors whose Value
// accessor reads a field from T, so no reflection or key indexing is involved.
// A list either runs in process over rows already loaded (Local) or delegates
// the whole query to a server-side source such as a SQL repository (Delegate).
package datatable
