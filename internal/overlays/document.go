package overlays

import (
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// IDField is the key the document ID is exposed under.
const IDField = "_id"

// Document is one stored overlay. Body is a JSON object that never carries
// IDField; the ID lives beside it.
type Document struct {
	ID        string
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name returns the document's "name" field.
func (d *Document) Name() string {
	return gjson.GetBytes(d.Body, "name").String()
}

// JSON renders the body with IDField set to the document ID.
func (d *Document) JSON() []byte {
	out, err := sjson.SetBytes(d.Body, IDField, d.ID)
	if err != nil {
		return d.Body
	}
	return out
}

// RenderList renders docs as a JSON array, keeping their order.
func RenderList(docs []Document) []byte {
	out := []byte("[]")
	for i := range docs {
		next, err := sjson.SetRawBytes(out, "-1", docs[i].JSON())
		if err != nil {
			continue
		}
		out = next
	}
	return out
}
