package sqlmodel

import (
	"fmt"

	"github.com/syssam/sqlmodel/dialect/sql"
)

// Attributes holds the attribute values of a single record, keyed by
// attribute name.
type Attributes map[string]any

// NormalizeRow maps a raw result row to attributes. Keys are resolved by
// column name, bare or prefixed with "<table>_"; when both forms are
// present the bare one wins. Keys that resolve to no attribute are
// dropped. Values are converted back from their storage form.
func NormalizeRow(m sql.Model, row sql.Row) (Attributes, error) {
	return normalizeRow(sql.NewColumns(m), row)
}

func normalizeRow(cols *sql.Columns, row sql.Row) (Attributes, error) {
	attrs := make(Attributes, len(row))
	bare := make(map[string]bool, len(row))
	for key, raw := range row {
		d, prefixed, ok := cols.AttributeKey(key)
		if !ok || (prefixed && bare[d.Name]) {
			continue
		}
		v, err := sql.FromColumn(d, raw)
		if err != nil {
			return nil, err
		}
		attrs[d.Name] = v
		if !prefixed {
			bare[d.Name] = true
		}
	}
	return attrs, nil
}

// NormalizeCollection normalizes rows and attaches the pagination of the
// statement that produced them. total is the number of records matching the
// query regardless of pagination; it is only used in paged mode.
func NormalizeCollection(m sql.Model, rows []sql.Row, page *sql.Page, total int64) (*Collection, error) {
	cols := sql.NewColumns(m)
	c := &Collection{Records: make([]Attributes, 0, len(rows))}
	var errs []error
	for i, row := range rows {
		attrs, err := normalizeRow(cols, row)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		c.Records = append(c.Records, attrs)
	}
	if err := NewAggregateError(errs...); err != nil {
		return nil, err
	}
	if page == nil {
		page = &sql.Page{Limit: len(rows)}
	}
	c.Limit, c.Offset = page.Limit, page.Offset
	if page.Paged {
		c.Paged = true
		c.Page, c.PageSize, c.Total = page.Page, page.PageSize, total
		c.Pages = pages(total, page.PageSize)
	}
	return c, nil
}

// pages returns ceil(total / size).
func pages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
