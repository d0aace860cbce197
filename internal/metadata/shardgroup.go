package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/claudefs/claudefs/internal/distributed"
)

// shardWriteOp is the wire format carried in a distributed.LogEntry's Data
// field (and a distributed.ConsensusProposal's Data field) for a single
// metadata write replicated through consensus.
type shardWriteOp struct {
	Kind  BatchOpKind `json:"kind"`
	Key   []byte      `json:"key"`
	Value []byte      `json:"value,omitempty"`
}

// ShardGroup binds one metadata shard's KVStore to the distributed
// consensus engine that replicates writes across the shard's replica set.
// Every accepted write proposal is applied to the local KVStore in commit
// order via the engine's apply callback; snapshotting is driven off the
// engine's log length so compaction tracks actual replication progress
// rather than a local write counter.
type ShardGroup struct {
	ShardID  int
	engine   *distributed.ConsensusEngine
	store    KVStore
	snapshot *RaftSnapshotManager
}

// NewShardGroup wires store to engine: every committed operation entry is
// applied to store, and engine.SetApplyCallback is called as a side
// effect. Call before engine.Start.
func NewShardGroup(shardID int, engine *distributed.ConsensusEngine, store KVStore, snapCfg RaftSnapshotConfig) *ShardGroup {
	g := &ShardGroup{
		ShardID:  shardID,
		engine:   engine,
		store:    store,
		snapshot: NewRaftSnapshotManager(snapCfg),
	}
	engine.SetApplyCallback(g.applyEntry)
	return g
}

func (g *ShardGroup) applyEntry(entry *distributed.LogEntry) {
	var op shardWriteOp
	if err := json.Unmarshal(entry.Data, &op); err != nil {
		return
	}
	switch op.Kind {
	case BatchPut:
		g.store.Put(op.Key, op.Value)
	case BatchDelete:
		g.store.Delete(op.Key)
	}
}

// ProposeWrite replicates a single key/value write through consensus. It
// returns an error immediately if this node is not the current leader;
// callers should retry against whichever node the cluster reports as
// leader.
func (g *ShardGroup) ProposeWrite(ctx context.Context, key, value []byte) error {
	return g.propose(ctx, shardWriteOp{Kind: BatchPut, Key: key, Value: value})
}

// ProposeDelete replicates a single key delete through consensus.
func (g *ShardGroup) ProposeDelete(ctx context.Context, key []byte) error {
	return g.propose(ctx, shardWriteOp{Kind: BatchDelete, Key: key})
}

func (g *ShardGroup) propose(ctx context.Context, op shardWriteOp) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("metadata: encode shard write: %w", err)
	}
	return g.engine.ProposeChange(ctx, &distributed.ConsensusProposal{
		Type: distributed.ProposalTypeOperation,
		Data: data,
	})
}

// MaybeSnapshot creates and returns a new snapshot if the engine's log has
// grown enough to warrant one, applying store's current state as the
// snapshot payload. Returns false if no snapshot was needed.
func (g *ShardGroup) MaybeSnapshot(encode func(KVStore) []byte) (RaftSnapshot, bool) {
	logLen := g.engine.LogLength()
	if !g.snapshot.ShouldSnapshot(logLen) {
		return RaftSnapshot{}, false
	}
	data := encode(g.store)
	snap := g.snapshot.CreateSnapshot(uint64(logLen), 0, data)
	return snap, true
}

// Store returns the shard's local KVStore.
func (g *ShardGroup) Store() KVStore { return g.store }

// HealthCheck reports unhealthy when the shard's consensus engine is stuck
// in candidate state, which means writes through ProposeWrite cannot commit
// until an election resolves.
func (g *ShardGroup) HealthCheck(ctx context.Context) error {
	if g.engine.GetCurrentState() == distributed.StateCandidate {
		return fmt.Errorf("metadata shard %d: election in progress, no leader", g.ShardID)
	}
	return nil
}

// GetComponentName identifies this shard group for health reporting.
func (g *ShardGroup) GetComponentName() string {
	return "metadata-shard-" + strconv.Itoa(g.ShardID)
}

// GetComponentType classifies this component for health monitor routing.
func (g *ShardGroup) GetComponentType() string { return "metadata" }
