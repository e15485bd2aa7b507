package plcdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDriverOpenConnects(t *testing.T) {
	d := NewMockDriver()
	assert.False(t, d.Connected())

	require.NoError(t, d.Open())
	assert.True(t, d.Connected())
}

func TestMockDriverForceFailOpen(t *testing.T) {
	d := NewMockDriver()
	d.ForceFailOpen = true

	err := d.Open()
	assert.Error(t, err)
	assert.False(t, d.Connected())
}

func TestMockDriverReadOneRequiresConnection(t *testing.T) {
	d := NewMockDriver()
	res := d.ReadOne("N7:0")
	assert.Error(t, res.Err)

	require.NoError(t, d.Open())
	res = d.ReadOne("N7:0")
	assert.NoError(t, res.Err)
	assert.NotNil(t, res.Value)
}

func TestMockDriverReadBatchNeverUnsupported(t *testing.T) {
	d := NewMockDriver()
	require.NoError(t, d.Open())

	results, err := d.ReadBatch([]string{"N7:0", "N7:1", "B3:0/0"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSLC500ReadBatchUnsupported(t *testing.T) {
	d := NewSLC500Driver("10.0.0.5", 0)
	_, err := d.ReadBatch([]string{"N7:0"})
	assert.ErrorIs(t, err, ErrBatchUnsupported)
}

func TestNewFactoryPrefersMock(t *testing.T) {
	d := New(KindCompactLogix, "10.0.0.1", 0, true)
	_, ok := d.(*MockDriver)
	assert.True(t, ok)
}
