package tagstore

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTagDefaultsByType(t *testing.T) {
	s := New()

	s.AddTag(&Tag{TagID: "B1", DataType: "Boolean", ScaleMul: 1.0, Enabled: true}, nil)
	v := s.GetRawValue("B1")
	assert.Equal(t, false, v)

	s.AddTag(&Tag{TagID: "I1", DataType: "Int32", ScaleMul: 1.0, Enabled: true}, nil)
	assert.Equal(t, int64(0), s.GetRawValue("I1"))

	s.AddTag(&Tag{TagID: "D1", DataType: "Double", ScaleMul: 1.0, Enabled: true}, nil)
	assert.Equal(t, 0.0, s.GetRawValue("D1"))
}

func TestGetValueNoScalingConvertsToDecimal(t *testing.T) {
	s := New()
	s.AddTag(&Tag{TagID: "T1", DataType: "Double", ScaleMul: 1.0, ScaleAdd: 0.0}, 9.81)

	v, ok := s.GetValue("T1")
	require.True(t, ok)
	d, ok := v.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromFloat(9.81)))
}

func TestGetValueAppliesScaling(t *testing.T) {
	s := New()
	s.AddTag(&Tag{TagID: "T2", DataType: "Double", ScaleMul: 2.0, ScaleAdd: 1.0}, 10.0)

	v, ok := s.GetValue("T2")
	require.True(t, ok)
	d := v.(decimal.Decimal)
	assert.True(t, d.Equal(decimal.NewFromFloat(21.0)))
}

func TestGetValueQuantizesWithDecimals(t *testing.T) {
	s := New()
	dec := 2
	s.AddTag(&Tag{TagID: "T3", DataType: "Double", ScaleMul: 1.0, ScaleAdd: 0.0, Decimals: &dec}, "1.23456")

	v, ok := s.GetValue("T3")
	require.True(t, ok)
	d := v.(decimal.Decimal)
	assert.Equal(t, "1.23", d.String())
}

func TestGetValueBooleanPassesThrough(t *testing.T) {
	s := New()
	s.AddTag(&Tag{TagID: "B2", DataType: "Boolean", ScaleMul: 1.0}, true)

	v, ok := s.GetValue("B2")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestGetValueMissingTag(t *testing.T) {
	s := New()
	_, ok := s.GetValue("nonexistent")
	assert.False(t, ok)
}

func TestDecimalPreservationRoundTrip(t *testing.T) {
	s := New()

	raw, err := ParseIncomingValue(json.RawMessage(`"1.2300"`))
	require.NoError(t, err)

	s.AddTag(&Tag{TagID: "T4", DataType: "Double", ScaleMul: 1.0}, raw)

	stored := s.GetRawValue("T4")
	serialized := SerializeValue(stored, true)
	assert.Equal(t, "1.2300", serialized)
}

func TestSnapshotReturnsRawUnscaledValues(t *testing.T) {
	s := New()
	s.AddTag(&Tag{TagID: "T5", DataType: "Double", ScaleMul: 2.0, ScaleAdd: 5.0}, 3.0)

	snap := s.Snapshot()
	assert.Equal(t, 3.0, snap["T5"])
}

func TestUpdateTagWhitelist(t *testing.T) {
	s := New()
	s.AddTag(NewTag("T6", "orig", "compactlogix", "ADDR"), nil)

	ok := s.UpdateTag("T6", map[string]any{
		"name":      "renamed",
		"scale_mul": 2.5,
		"enabled":   false,
	})
	require.True(t, ok)

	tag := s.GetTag("T6")
	assert.Equal(t, "renamed", tag.Name)
	assert.Equal(t, 2.5, tag.ScaleMul)
	assert.False(t, tag.Enabled)
}

func TestRemoveTagClearsValue(t *testing.T) {
	s := New()
	s.AddTag(NewTag("T7", "x", "compactlogix", "ADDR"), nil)
	s.RemoveTag("T7")

	assert.Nil(t, s.GetTag("T7"))
	_, ok := s.GetValue("T7")
	assert.False(t, ok)
}

func TestClearTags(t *testing.T) {
	s := New()
	s.AddTag(NewTag("A", "a", "compactlogix", "ADDR_A"), nil)
	s.AddTag(NewTag("B", "b", "compactlogix", "ADDR_B"), nil)

	s.ClearTags()

	assert.Empty(t, s.ListTags())
}
