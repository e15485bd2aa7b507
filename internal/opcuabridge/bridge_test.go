package opcuabridge

import (
	"context"
	"testing"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVariantTypeForPriority(t *testing.T) {
	cases := map[string]ua.TypeID{
		"Boolean": ua.TypeIDBoolean,
		"UInt32":  ua.TypeIDUint32,
		"Int64":   ua.TypeIDInt64,
		"Float":   ua.TypeIDFloat,
		"Double":  ua.TypeIDDouble,
		"String":  ua.TypeIDString,
		"str":     ua.TypeIDString,
		"unknown": ua.TypeIDDouble,
	}
	for dt, want := range cases {
		assert.Equal(t, want, VariantTypeFor(dt), "dataType=%q", dt)
	}
}

func TestNormalizeForWriteConvertsDecimal(t *testing.T) {
	d := decimal.NewFromFloat(12.75)

	asInt := NormalizeForWrite(d, ua.TypeIDInt64)
	assert.Equal(t, int64(12), asInt)

	asBool := NormalizeForWrite(decimal.NewFromInt(1), ua.TypeIDBoolean)
	assert.Equal(t, true, asBool)

	asFloat := NormalizeForWrite(d, ua.TypeIDDouble)
	assert.Equal(t, 12.75, asFloat)
}

func startedBridge(t *testing.T) (*Bridge, context.CancelFunc) {
	t.Helper()
	b := New("http://hmi.designer.flutter", "HMI_Tags")
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	return b, cancel
}

func TestCreateUpdateDeleteNodeLifecycle(t *testing.T) {
	b, cancel := startedBridge(t)
	defer cancel()

	b.CreateNode("T1", "Temp", "Double", false, 1.5)
	waitFor(t, func() bool { return b.NodeCount() == 1 })

	b.UpdateValue("T1", 2.5)
	b.DeleteNode("T1")
	waitFor(t, func() bool { return b.NodeCount() == 0 })
}

func TestUpdateUnknownNodeIsNoOp(t *testing.T) {
	b, cancel := startedBridge(t)
	defer cancel()

	b.UpdateValue("missing", 1.0)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, b.NodeCount())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
