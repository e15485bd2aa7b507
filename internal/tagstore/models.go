// Package tagstore implements the gateway's thread-safe tag metadata and
// value registry.
package tagstore

// Tag is mutable metadata describing one addressable PLC datum.
type Tag struct {
	TagID         string   `json:"tag_id"`
	Name          string   `json:"name"`
	PLCID         string   `json:"plc_id"`
	Address       string   `json:"address"`
	DataType      string   `json:"data_type"`
	GroupID       string   `json:"group_id"`
	ProjectID     string   `json:"project_id,omitempty"`
	ScaleMul      float64  `json:"scale_mul"`
	ScaleAdd      float64  `json:"scale_add"`
	Decimals      *int     `json:"decimals,omitempty"`
	Writable      bool     `json:"writable"`
	Description   string   `json:"description,omitempty"`
	Enabled       bool     `json:"enabled"`
	ClientVisible []string `json:"client_visible,omitempty"`
}

// Clone returns a defensive copy of the tag, safe to hand to callers outside
// the store's lock.
func (t *Tag) Clone() *Tag {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Decimals != nil {
		d := *t.Decimals
		cp.Decimals = &d
	}
	if t.ClientVisible != nil {
		cp.ClientVisible = append([]string(nil), t.ClientVisible...)
	}
	return &cp
}

// WithDefaults fills in the tag's zero-valued optional fields with their
// documented defaults (mirrors the dataclass field defaults the original
// gateway's Tag model carried).
func (t *Tag) WithDefaults() *Tag {
	if t.DataType == "" {
		t.DataType = "Double"
	}
	if t.GroupID == "" {
		t.GroupID = "default"
	}
	if t.ScaleMul == 0 {
		t.ScaleMul = 1.0
	}
	return t
}

// NewTag builds a Tag with the documented defaults applied.
func NewTag(tagID, name, plcID, address string) *Tag {
	return &Tag{
		TagID:    tagID,
		Name:     name,
		PLCID:    plcID,
		Address:  address,
		DataType: "Double",
		GroupID:  "default",
		ScaleMul: 1.0,
		ScaleAdd: 0.0,
		Enabled:  true,
	}
}
