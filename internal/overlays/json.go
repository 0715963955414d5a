package overlays

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// checkObject accepts only a syntactically valid JSON object.
func checkObject(raw []byte) error {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return invalid("request body must be a JSON object")
	}
	return nil
}

// PrepareCreate validates a new overlay and normalizes it: IDField is
// dropped and a missing "elements" becomes an empty array.
func PrepareCreate(raw []byte) ([]byte, error) {
	if err := checkObject(raw); err != nil {
		return nil, err
	}

	name := gjson.GetBytes(raw, "name")
	if name.Type != gjson.String || name.String() == "" {
		return nil, invalid("name is required")
	}

	body, err := stripID(raw)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "elements").Exists() {
		if body, err = sjson.SetRawBytes(body, "elements", []byte("[]")); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// PreparePatch validates a partial update. IDField is dropped; everything
// else is kept for a top-level merge.
func PreparePatch(raw []byte) ([]byte, error) {
	if err := checkObject(raw); err != nil {
		return nil, err
	}
	return stripID(raw)
}

// MergeFields sets every top-level field of patch on dst. Nested objects are
// replaced, not merged.
func MergeFields(dst, patch []byte) ([]byte, error) {
	out := append([]byte(nil), dst...)
	var err error
	gjson.ParseBytes(patch).ForEach(func(key, value gjson.Result) bool {
		out, err = sjson.SetRawBytes(out, gjson.Escape(key.String()), []byte(value.Raw))
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fields returns the number of top-level fields in an object.
func Fields(raw []byte) int {
	n := 0
	gjson.ParseBytes(raw).ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

func stripID(raw []byte) ([]byte, error) {
	if !gjson.GetBytes(raw, IDField).Exists() {
		return raw, nil
	}
	return sjson.DeleteBytes(raw, IDField)
}
