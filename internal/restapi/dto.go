package restapi

import "plcgateway/internal/tagstore"

// tagPayload is the wire shape accepted by POST /tags and PUT /tags/import,
// and returned (with current value folded in) by GET /tags/{id}.
type tagPayload struct {
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
	Value         any      `json:"value,omitempty"`
}

func (p *tagPayload) toTag() *tagstore.Tag {
	t := &tagstore.Tag{
		TagID:         p.TagID,
		Name:          p.Name,
		PLCID:         p.PLCID,
		Address:       p.Address,
		DataType:      p.DataType,
		GroupID:       p.GroupID,
		ProjectID:     p.ProjectID,
		ScaleMul:      p.ScaleMul,
		ScaleAdd:      p.ScaleAdd,
		Decimals:      p.Decimals,
		Writable:      p.Writable,
		Description:   p.Description,
		Enabled:       p.Enabled,
		ClientVisible: p.ClientVisible,
	}
	return t.WithDefaults()
}

type createBatchPayload struct {
	Tags []tagPayload `json:"tags"`
}

type importPayload struct {
	Tags []tagPayload `json:"tags"`
}

func tagDTO(t *tagstore.Tag, value any) map[string]any {
	return map[string]any{
		"tag_id":         t.TagID,
		"name":           t.Name,
		"plc_id":         t.PLCID,
		"address":        t.Address,
		"data_type":      t.DataType,
		"group_id":       t.GroupID,
		"project_id":     t.ProjectID,
		"scale_mul":      t.ScaleMul,
		"scale_add":      t.ScaleAdd,
		"decimals":       t.Decimals,
		"writable":       t.Writable,
		"description":    t.Description,
		"enabled":        t.Enabled,
		"client_visible": t.ClientVisible,
		"value":          value,
	}
}
