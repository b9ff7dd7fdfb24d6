package sqlmodel

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Collection is a page of normalized records.
type Collection struct {
	Records []Attributes

	// Limit and Offset are set in both modes.
	Limit  int
	Offset int

	// Paged mode only.
	Paged    bool
	Page     int
	PageSize int
	Pages    int
	Total    int64
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.Records) }

// Representation returns the external shape of the collection:
// {collection, limit, offset} or, in paged mode,
// {collection, page, pageSize, pages, total}.
func (c *Collection) Representation() map[string]any {
	records := c.Records
	if records == nil {
		records = []Attributes{}
	}
	if c.Paged {
		return map[string]any{
			"collection": records,
			"page":       c.Page,
			"pageSize":   c.PageSize,
			"pages":      c.Pages,
			"total":      c.Total,
		}
	}
	return map[string]any{
		"collection": records,
		"limit":      c.Limit,
		"offset":     c.Offset,
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Representation())
}

// EncodeMsgpack implements the msgpack.CustomEncoder interface.
func (c *Collection) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(c.Representation())
}

var (
	_ json.Marshaler        = (*Collection)(nil)
	_ msgpack.CustomEncoder = (*Collection)(nil)
)
