package tree

import "encoding/json"

// UnmarshalJSON decodes a JSON object and normalizes nested objects into
// Tree values so decoded trees can be walked with Lookup.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	n, err := Normalize(doc)
	if err != nil {
		return err
	}

	*t = n
	return nil
}
