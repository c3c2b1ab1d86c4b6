// Package roster maps upstream driver roster exports onto the canonical
// DriverRecord shape.
//
// Upstream exports change header names and column order between runs, so
// column resolution goes through an explicit ColumnMap: an ordered synonym
// list per logical field, matched case-insensitively against sanitized
// headers. Every coercion falls back to a documented default instead of
// failing, which keeps a single malformed row from blocking a whole import.
//
// Everything in this package is a pure function of its inputs.
package roster
