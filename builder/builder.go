// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package builder implements the parallel recursive divide-and-conquer
// tree construction: given placed entities and a master secret, it
// builds every node from leaves to root, retaining the subset the
// configured store depth calls for and dropping the rest.
package builder

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/placement"
	"github.com/luxfi/dapol/secret"
	"github.com/luxfi/dapol/store"
	"github.com/luxfi/log"
	"golang.org/x/sync/errgroup"
)

// Entity is a liability record keyed by an opaque identifier.
type Entity struct {
	ID        []byte
	Liability uint64
}

// Config bounds one build: the tree's shape, its worker budget, and the
// per-leaf range bound entities are checked against.
type Config struct {
	Height     uint8
	StoreDepth uint8
	MaxThreads int
	RangeBits  uint8
	Logger     log.Logger
}

// Result is everything a build produces: the sealed store of retained
// nodes, the root, the placement map, and the sorted leaf table the
// proof subsystem needs to recompute any sibling subtree that fell
// below the retained frontier.
type Result struct {
	Store      *store.Store
	Root       node.Node
	Placement  *placement.Map
	Leaves     []LeafRecord
	Height     uint8
	StoreDepth uint8
	RangeBits  uint8
	Duration   time.Duration
}

// LeafRecord is one placed entity: its assigned leaf x-coordinate
// alongside the entity data needed to reconstruct its leaf node.
type LeafRecord struct {
	X         uint64
	ID        []byte
	Liability uint64
}

// LeavesInRange returns the contiguous slice of a sorted-by-X leaf
// table falling within coord's x-range, via binary search.
func LeavesInRange(leaves []LeafRecord, coord node.Coordinate) []LeafRecord {
	if coord.Y >= 64 {
		return leaves
	}
	width := uint64(1) << coord.Y
	start := coord.X * width
	lo := sort.Search(len(leaves), func(i int) bool { return leaves[i].X >= start })
	rest := leaves[lo:]
	hi := sort.Search(len(rest), func(i int) bool { return rest[i].X-start >= width })
	return rest[:hi]
}

// RecomputeSubtree rebuilds the node at coord from leaves sequentially,
// without a store or worker pool. The proof subsystem uses this to
// regenerate a sibling subtree that was not retained during build; the
// recomputation is local, bounded by the subtree's own leaf count, and
// uses the same divide-and-conquer algorithm as the parallel builder.
func RecomputeSubtree(coord node.Coordinate, leaves []LeafRecord, master secret.Master) node.Node {
	if len(leaves) == 0 {
		return node.Pad(coord, master)
	}
	if coord.Y == 0 {
		leaf := leaves[0]
		return node.Leaf(leaf.X, leaf.ID, leaf.Liability, master)
	}
	leftCoord := node.Coordinate{X: coord.X * 2, Y: coord.Y - 1}
	rightCoord := node.Coordinate{X: coord.X*2 + 1, Y: coord.Y - 1}
	left := RecomputeSubtree(leftCoord, LeavesInRange(leaves, leftCoord), master)
	right := RecomputeSubtree(rightCoord, LeavesInRange(leaves, rightCoord), master)
	return node.Combine(left, right)
}

// Build constructs a tree from entities under master, per Config. It
// validates configuration and input before doing any work, places every
// entity via the NDM in ascending ID order (so the caller's ordering of
// entities does not affect the tree), then recursively combines leaves
// to a root over a worker pool bounded by Config.MaxThreads.
func Build(ctx context.Context, entities []Entity, master secret.Master, cfg Config) (*Result, error) {
	start := time.Now()

	if err := validateConfig(cfg, len(entities)); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entities))
	rangeMax := rangeBound(cfg.RangeBits)
	for _, e := range entities {
		key := string(e.ID)
		if _, dup := seen[key]; dup {
			return nil, &DuplicateEntityError{ID: e.ID}
		}
		seen[key] = struct{}{}
		if e.Liability > rangeMax {
			return nil, &RangeExceededError{ID: e.ID, Value: e.Liability}
		}
	}

	ordered := make([]Entity, len(entities))
	copy(ordered, entities)
	sort.Slice(ordered, func(i, j int) bool { return bytes.Compare(ordered[i].ID, ordered[j].ID) < 0 })

	pm := placement.NewMap(cfg.Height)
	leaves := make([]LeafRecord, 0, len(entities))
	for _, e := range ordered {
		x, err := pm.Place(master, e.ID)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, LeafRecord{X: x, ID: e.ID, Liability: e.Liability})
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].X < leaves[j].X })

	expectedNodes := len(entities) * (int(cfg.StoreDepth) + 1)
	st := store.New(expectedNodes)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxThreads > 0 {
		g.SetLimit(cfg.MaxThreads)
	}

	b := &treeBuilder{
		ctx:        gctx,
		group:      g,
		master:     master,
		store:      st,
		height:     cfg.Height,
		storeDepth: cfg.StoreDepth,
		logger:     cfg.Logger,
	}

	root, err := b.build(node.Coordinate{X: 0, Y: cfg.Height}, leaves)
	if err == nil {
		err = g.Wait()
	} else {
		_ = g.Wait()
	}
	if err != nil {
		if gctx.Err() != nil && err == gctx.Err() {
			return nil, ErrCancelled
		}
		return nil, err
	}

	st.Insert(root)
	st.Seal()

	if cfg.Logger != nil {
		cfg.Logger.Info("tree build complete",
			"retainedNodes", st.Len(),
			"entities", len(entities),
			"elapsed", time.Since(start),
		)
	}

	return &Result{
		Store:      st,
		Root:       root,
		Placement:  pm,
		Leaves:     leaves,
		Height:     cfg.Height,
		StoreDepth: cfg.StoreDepth,
		RangeBits:  cfg.RangeBits,
		Duration:   time.Since(start),
	}, nil
}

func validateConfig(cfg Config, numEntities int) error {
	if numEntities == 0 {
		return ErrEmptyEntitySet
	}
	if cfg.Height < 2 || cfg.Height > 64 {
		return ErrHeightOutOfRange
	}
	if cfg.StoreDepth > cfg.Height {
		return ErrInvalidStoreDepth
	}
	if cfg.Height < 63 {
		capacity := uint64(1) << cfg.Height
		if capacity < 2*uint64(numEntities) {
			return ErrHeightTooSmall
		}
	}
	return nil
}

// rangeBound returns 2^bits - 1, saturating to MaxUint64 at bits >= 64.
func rangeBound(bits uint8) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// treeBuilder carries the state shared by every recursive build call for
// one tree: the shared worker group, the master secret, and the store
// being filled.
type treeBuilder struct {
	ctx        context.Context
	group      *errgroup.Group
	master     secret.Master
	store      *store.Store
	height     uint8
	storeDepth uint8
	logger     log.Logger
}

type buildOutcome struct {
	n   node.Node
	err error
}

// build constructs the subtree rooted at coord covering leaves, which
// must be sorted by x and confined to coord's x-range. Only non-empty
// subtrees ever touch the worker group; empty subtrees resolve to a
// padding node inline, so a fully-padding build never consumes a worker
// permit.
func (b *treeBuilder) build(coord node.Coordinate, leaves []LeafRecord) (node.Node, error) {
	select {
	case <-b.ctx.Done():
		return node.Node{}, b.ctx.Err()
	default:
	}

	if len(leaves) == 0 {
		n := node.Pad(coord, b.master)
		b.retain(n)
		return n, nil
	}

	if coord.Y == 0 {
		leaf := leaves[0]
		n := node.Leaf(leaf.X, leaf.ID, leaf.Liability, b.master)
		b.retain(n)
		return n, nil
	}

	leftCoord := node.Coordinate{X: coord.X * 2, Y: coord.Y - 1}
	rightCoord := node.Coordinate{X: coord.X*2 + 1, Y: coord.Y - 1}
	leftLeaves := LeavesInRange(leaves, leftCoord)
	rightLeaves := LeavesInRange(leaves, rightCoord)

	if b.logger != nil {
		b.logger.Debug("dispatching subtree", "x", coord.X, "y", coord.Y, "leaves", len(leaves))
	}

	// Inline whichever side has fewer leaves, so the current goroutine's
	// recursion stack stays as shallow as possible; spawn the other side
	// onto the shared worker pool.
	if len(leftLeaves) <= len(rightLeaves) {
		done := make(chan buildOutcome, 1)
		b.spawn(rightCoord, rightLeaves, done)

		left, err := b.build(leftCoord, leftLeaves)
		if err != nil {
			return node.Node{}, err
		}
		right := <-done
		if right.err != nil {
			return node.Node{}, right.err
		}
		parent := node.Combine(left, right.n)
		b.retain(parent)
		return parent, nil
	}

	done := make(chan buildOutcome, 1)
	b.spawn(leftCoord, leftLeaves, done)

	right, err := b.build(rightCoord, rightLeaves)
	if err != nil {
		return node.Node{}, err
	}
	left := <-done
	if left.err != nil {
		return node.Node{}, left.err
	}
	parent := node.Combine(left.n, right)
	b.retain(parent)
	return parent, nil
}

// spawn submits coord's subtree as a task on the shared worker group and
// delivers its outcome on done. An empty subtree, or one submitted while
// every worker permit is taken, runs on the calling goroutine instead,
// so a task never blocks waiting for a permit while holding one. Every
// exit path, including a recovered panic, sends exactly one result and
// releases the worker permit — the fix for the historical thread-pool
// refill bug, where a subtree that resolved to padding could exit
// without freeing its worker.
func (b *treeBuilder) spawn(coord node.Coordinate, leaves []LeafRecord, done chan<- buildOutcome) {
	task := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &BuildAbortedError{Coord: coord, Cause: fmt.Errorf("panic: %v", r)}
				done <- buildOutcome{err: err}
			}
		}()
		n, buildErr := b.build(coord, leaves)
		done <- buildOutcome{n: n, err: buildErr}
		return buildErr
	}
	if len(leaves) == 0 || !b.group.TryGo(task) {
		_ = task()
	}
}

// retain inserts n into the store iff its level is at or above the
// retained frontier y >= height - storeDepth.
func (b *treeBuilder) retain(n node.Node) {
	if n.Coord.Y >= b.height-b.storeDepth {
		b.store.Insert(n)
	}
}
