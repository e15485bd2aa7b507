package tagstore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Store is a thread-safe in-memory registry of tag metadata and current
// values. All public methods are non-recursive: none calls another locking
// method while holding the mutex, so a single sync.Mutex is sufficient
// without needing reentrancy.
type Store struct {
	mu     sync.Mutex
	tags   map[string]*Tag
	values map[string]any // bool | decimal.Decimal | string | int64 | float64
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		tags:   make(map[string]*Tag),
		values: make(map[string]any),
	}
}

// AddTag registers tag, storing initialValue if non-nil or else a
// type-appropriate zero value (Boolean -> false, any integer-typed ->
// int64(0), other numeric -> float64(0)).
func (s *Store) AddTag(tag *Tag, initialValue any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := tag.Clone()
	s.tags[cp.TagID] = cp

	if initialValue != nil {
		s.values[cp.TagID] = initialValue
		return
	}
	s.values[cp.TagID] = defaultValueFor(cp.DataType)
}

func defaultValueFor(dataType string) any {
	dt := strings.ToLower(dataType)
	switch {
	case strings.HasPrefix(dt, "bool"):
		return false
	case strings.Contains(dt, "int"):
		return int64(0)
	default:
		return 0.0
	}
}

// RemoveTag deletes both the tag's metadata and its stored value.
func (s *Store) RemoveTag(tagID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, tagID)
	delete(s.values, tagID)
}

// GetTag returns a defensive copy of tag metadata, or nil if unknown.
func (s *Store) GetTag(tagID string) *Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[tagID].Clone()
}

// GetRawValue returns the unscaled stored value, or nil if unknown.
func (s *Store) GetRawValue(tagID string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[tagID]
}

// SetValue overwrites the stored value for tagID, even if the tag itself is
// unknown (mirrors the original gateway's allow-unknown-tag fallback).
func (s *Store) SetValue(tagID string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[tagID] = value
}

// GetValue returns the scaled, quantized value for tagID following the
// arithmetic contract in full:
//
//   - missing tag_id -> nil, false
//   - boolean raw value, or a boolean-typed tag -> the raw value unchanged
//   - otherwise convert raw to decimal; on conversion failure, return raw
//     unchanged
//   - scaled = raw*scale_mul + scale_add using decimal arithmetic
//   - if decimals is set, quantize to 10^-decimals using half-up rounding
func (s *Store) GetValue(tagID string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[tagID]
	if !ok || raw == nil {
		return nil, false
	}

	tag := s.tags[tagID]
	if tag == nil {
		return raw, true
	}

	if b, isBool := raw.(bool); isBool {
		return b, true
	}
	if strings.HasPrefix(strings.ToLower(tag.DataType), "bool") {
		return raw, true
	}

	num, err := toDecimal(raw)
	if err != nil {
		return raw, true
	}

	if tag.ScaleMul == 1.0 && tag.ScaleAdd == 0.0 {
		return quantizeIfRequested(num, tag.Decimals), true
	}

	mul := decimal.NewFromFloat(tag.ScaleMul)
	add := decimal.NewFromFloat(tag.ScaleAdd)
	scaled := num.Mul(mul).Add(add)
	return quantizeIfRequested(scaled, tag.Decimals), true
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Decimal{}, fmt.Errorf("tagstore: unsupported raw value type %T", raw)
	}
}

func quantizeIfRequested(d decimal.Decimal, decimals *int) decimal.Decimal {
	if decimals == nil {
		return d
	}
	return d.Round(int32(*decimals))
}

// ListTags returns defensive copies of every tag's metadata. Values are not
// included.
func (s *Store) ListTags() []*Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t.Clone())
	}
	return out
}

// Snapshot returns the raw (unscaled) value for every known tag_id.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.tags))
	for tagID := range s.tags {
		out[tagID] = s.values[tagID]
	}
	return out
}

// UpdateTag applies a partial update to an existing tag's metadata from the
// PATCH whitelist. Returns false if the tag is unknown.
func (s *Store) UpdateTag(tagID string, partial map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tags[tagID]
	if t == nil {
		return false
	}

	for k, v := range partial {
		applyField(t, k, v)
	}
	return true
}

func applyField(t *Tag, field string, value any) {
	switch field {
	case "name":
		if s, ok := value.(string); ok {
			t.Name = s
		}
	case "plc_id":
		if s, ok := value.(string); ok {
			t.PLCID = s
		}
	case "address":
		if s, ok := value.(string); ok {
			t.Address = s
		}
	case "data_type":
		if s, ok := value.(string); ok {
			t.DataType = s
		}
	case "group_id":
		if s, ok := value.(string); ok {
			t.GroupID = s
		}
	case "description":
		if s, ok := value.(string); ok {
			t.Description = s
		}
	case "enabled":
		if b, ok := value.(bool); ok {
			t.Enabled = b
		}
	case "project_id":
		if s, ok := value.(string); ok {
			t.ProjectID = s
		}
	case "scale_mul":
		if f, ok := toFloat(value); ok {
			t.ScaleMul = f
		}
	case "scale_add":
		if f, ok := toFloat(value); ok {
			t.ScaleAdd = f
		}
	case "writable":
		if b, ok := value.(bool); ok {
			t.Writable = b
		}
	case "client_visible":
		if v, ok := toStringSlice(value); ok {
			t.ClientVisible = v
		}
	}
}

// toStringSlice accepts both []string (direct construction) and []any
// (the shape produced by decoding a JSON array into an any field).
func toStringSlice(v any) ([]string, bool) {
	switch vs := v.(type) {
	case []string:
		return vs, true
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ClearTags removes every tag and value.
func (s *Store) ClearTags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = make(map[string]*Tag)
	s.values = make(map[string]any)
}
