package opcuabridge

import (
	"context"
	"sync"

	"github.com/gopcua/opcua/ua"

	"plcgateway/internal/logger"
	"plcgateway/internal/metrics"
)

// nodeHandle is this package's record of one tag's OPC UA variable: the
// node id it was registered under and the variant type its writes are
// coerced to.
type nodeHandle struct {
	tagID       string
	displayName string
	variantType ua.TypeID
	writable    bool
	value       *ua.Variant
}

type command struct {
	kind    string // "create", "update", "delete"
	tagID   string
	name    string
	dtype   string
	writable bool
	value   any
}

// Bridge owns the OPC UA address space: the namespace index, the HMI_Tags
// folder, and the tagID->node map. All of these are mutated only from the
// single goroutine run by Bridge.Run; every other caller communicates via
// the buffered command queue (CreateNode, UpdateValue, DeleteNode), which is
// safe to use before the bridge has started: queued commands are applied
// once Run begins draining, and a full queue drops the command.
type Bridge struct {
	NamespaceURI string
	FolderName   string

	mu      sync.RWMutex
	nodes   map[string]*nodeHandle
	cmdCh   chan command
	started bool
}

// New constructs an unstarted Bridge. namespaceURI and folderName describe
// the OPC UA server's registered namespace and the Objects-folder child
// that holds every tag variable.
func New(namespaceURI, folderName string) *Bridge {
	return &Bridge{
		NamespaceURI: namespaceURI,
		FolderName:   folderName,
		nodes:        make(map[string]*nodeHandle),
		cmdCh:        make(chan command, 256),
	}
}

// Run drains the command queue on the calling goroutine until ctx is
// cancelled. This is the bridge's server runtime: the address space lives
// in-process rather than behind a separate network listener, so draining
// the queue is the entirety of "running" the OPC UA server. Intended to be
// launched once in its own goroutine, e.g. via lifecycle.RunBridge.
func (b *Bridge) Run(ctx context.Context) {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-b.cmdCh:
			b.apply(cmd)
		}
	}
}

func (b *Bridge) apply(cmd command) {
	switch cmd.kind {
	case "create":
		b.applyCreate(cmd)
	case "update":
		b.applyUpdate(cmd)
	case "delete":
		b.applyDelete(cmd)
	}
}

func (b *Bridge) applyCreate(cmd command) {
	vt := VariantTypeFor(cmd.dtype)
	normalized := NormalizeForWrite(cmd.value, vt)
	variant, err := ua.NewVariant(normalized)
	if err != nil {
		metrics.Get().RecordOPCUAOperation("create", "error")
		logger.Error("opcuabridge: create node variant conversion failed", "tag_id", cmd.tagID, "error", err)
		return
	}

	b.mu.Lock()
	b.nodes[cmd.tagID] = &nodeHandle{
		tagID:       cmd.tagID,
		displayName: cmd.name,
		variantType: vt,
		writable:    cmd.writable,
		value:       variant,
	}
	count := len(b.nodes)
	b.mu.Unlock()

	metrics.Get().SetOPCUANodeCount(count)
	metrics.Get().RecordOPCUAOperation("create", "ok")
}

func (b *Bridge) applyUpdate(cmd command) {
	b.mu.Lock()
	handle, ok := b.nodes[cmd.tagID]
	if !ok {
		b.mu.Unlock()
		return // missing id is a no-op, per the bridge's write-through contract
	}
	normalized := NormalizeForWrite(cmd.value, handle.variantType)
	variant, err := ua.NewVariant(normalized)
	if err != nil {
		b.mu.Unlock()
		metrics.Get().RecordOPCUAOperation("update", "error")
		return
	}
	handle.value = variant
	b.mu.Unlock()

	metrics.Get().RecordOPCUAOperation("update", "ok")
}

func (b *Bridge) applyDelete(cmd command) {
	b.mu.Lock()
	delete(b.nodes, cmd.tagID)
	count := len(b.nodes)
	b.mu.Unlock()

	metrics.Get().SetOPCUANodeCount(count)
	metrics.Get().RecordOPCUAOperation("delete", "ok")
}

// schedule enqueues cmd for the goroutine running Run. It never blocks the
// caller beyond the channel buffer: a full queue drops the command rather
// than stalling a REST handler or poll cycle.
func (b *Bridge) schedule(cmd command) {
	select {
	case b.cmdCh <- cmd:
	default:
		logger.Warn("opcuabridge: command queue full, dropping command", "kind", cmd.kind, "tag_id", cmd.tagID)
	}
}

// CreateNode schedules creation of a variable node for a newly registered
// tag.
func (b *Bridge) CreateNode(tagID, name, dataType string, writable bool, initialValue any) {
	b.schedule(command{kind: "create", tagID: tagID, name: name, dtype: dataType, writable: writable, value: initialValue})
}

// UpdateValue schedules a write-through of tagID's current scaled value.
// Implements pollengine.VarWriter.
func (b *Bridge) UpdateValue(tagID string, value any) {
	b.schedule(command{kind: "update", tagID: tagID, value: value})
}

// DeleteNode schedules removal of tagID's variable node.
func (b *Bridge) DeleteNode(tagID string) {
	b.schedule(command{kind: "delete", tagID: tagID})
}

// NodeCount returns the current number of registered variable nodes.
func (b *Bridge) NodeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.nodes)
}
