package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	entry := NewEntry().
		Action(ActionCreate).
		Outcome(OutcomeSuccess).
		Client("127.0.0.1").
		Resource("tag", "T1").
		Duration(100 * time.Millisecond).
		Meta("key1", "value1").
		Build()

	if entry.Action != ActionCreate {
		t.Errorf("expected action CREATE, got %s", entry.Action)
	}
	if entry.Outcome != OutcomeSuccess {
		t.Errorf("expected outcome SUCCESS, got %s", entry.Outcome)
	}
	if entry.ClientIP != "127.0.0.1" {
		t.Errorf("expected clientIP '127.0.0.1', got %s", entry.ClientIP)
	}
	if entry.Resource != "tag" {
		t.Errorf("expected resource 'tag', got %s", entry.Resource)
	}
	if entry.ResourceID != "T1" {
		t.Errorf("expected resourceID 'T1', got %s", entry.ResourceID)
	}
	if entry.DurationMs != 100 {
		t.Errorf("expected durationMs 100, got %d", entry.DurationMs)
	}
	if entry.Metadata["key1"] != "value1" {
		t.Errorf("expected metadata key1='value1', got %v", entry.Metadata["key1"])
	}
	if entry.ID == "" {
		t.Error("expected ID to be generated")
	}
}

func TestBuilderError(t *testing.T) {
	entry := NewEntry().
		Action(ActionDelete).
		Outcome(OutcomeFailure).
		Error("TAG_NOT_FOUND").
		Build()

	if entry.ErrorCode != "TAG_NOT_FOUND" {
		t.Errorf("expected errorCode 'TAG_NOT_FOUND', got %s", entry.ErrorCode)
	}
}

func TestBuilderChanges(t *testing.T) {
	changes := &ChangeSet{
		Before: map[string]any{"enabled": false},
		After:  map[string]any{"enabled": true},
		Fields: []string{"enabled"},
	}

	entry := NewEntry().Changes(changes).Build()

	if entry.Changes == nil {
		t.Fatal("expected changes to be set")
	}
	if entry.Changes.Before["enabled"] != false {
		t.Errorf("expected before enabled=false, got %v", entry.Changes.Before["enabled"])
	}
	if entry.Changes.After["enabled"] != true {
		t.Errorf("expected after enabled=true, got %v", entry.Changes.After["enabled"])
	}
}

func TestEntryMarshalJSON(t *testing.T) {
	entry := NewEntry().Action(ActionUpdate).Outcome(OutcomeSuccess).Build()

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal entry: %v", err)
	}

	var decoded Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal entry: %v", err)
	}
	if decoded.Action != entry.Action {
		t.Errorf("expected action %s, got %s", entry.Action, decoded.Action)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Enabled {
		t.Error("expected enabled to be true by default")
	}
	if cfg.Backend != "stdout" {
		t.Errorf("expected backend 'stdout', got %s", cfg.Backend)
	}
	if cfg.BufferSize != 1000 {
		t.Errorf("expected buffer size 1000, got %d", cfg.BufferSize)
	}
}

func TestGenerateID(t *testing.T) {
	id := generateID()
	if id == "" {
		t.Error("expected non-empty ID")
	}
	if len(id) < 14 {
		t.Error("expected ID to contain timestamp prefix")
	}
}

func TestNewDisabledConfigReturnsNoop(t *testing.T) {
	l, err := New(&Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := l.(*NoopLogger); !ok {
		t.Errorf("expected NoopLogger, got %T", l)
	}
}

func TestStdoutLoggerLogRespectsEnabled(t *testing.T) {
	l := NewStdoutLogger(&Config{Enabled: true})
	entry := NewEntry().Action(ActionStop).Outcome(OutcomeSuccess).Build()
	if err := l.Log(context.Background(), entry); err != nil {
		t.Errorf("Log() error = %v", err)
	}
}

func TestGlobalLoggerDefaultsToNoop(t *testing.T) {
	if _, ok := Get().(*NoopLogger); !ok {
		t.Skip("global logger was set by another test in this package")
	}
}
