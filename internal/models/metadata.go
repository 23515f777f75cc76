// Package models defines the data structures shared across the WearSearch API:
// catalog metadata, feedback submissions, and request/response shapes.
package models

import "encoding/json"

// Metadata describes a catalog item. DisplayName, Description, and Category are
// the fields the engine knows about; anything else found in a metadata object
// is kept in Extra so that unrecognized keys survive a round-trip.
type Metadata struct {
	DisplayName string
	Description string
	Category    string
	Extra       map[string]string
}

// MarshalJSON flattens Metadata into a single JSON object, merging Extra with
// the typed fields. Typed fields win on key collision.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.DisplayName != "" {
		out["display_name"] = m.DisplayName
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.Category != "" {
		out["category"] = m.Category
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a metadata object into the typed fields and Extra.
// Non-string values are kept as their raw JSON text.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v)
		}
		switch k {
		case "display_name":
			m.DisplayName = s
		case "description":
			m.Description = s
		case "category":
			m.Category = s
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[k] = s
		}
	}
	return nil
}

// IsZero reports whether no metadata field is set.
func (m Metadata) IsZero() bool {
	return m.DisplayName == "" && m.Description == "" && m.Category == "" && len(m.Extra) == 0
}
