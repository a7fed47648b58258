// Package cluster synchronizes frames across render nodes. A master commits
// versioned renderer snapshots; every node starts a frame at the same committed
// version and no node finishes a frame before all have rendered it.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// FrameSync is the frame synchronization contract between render nodes.
type FrameSync interface {
	// StartFrame blocks until every node is ready to render, then returns the
	// version committed when the last node arrived together with its snapshot.
	StartFrame(ctx context.Context, node int) (version uint64, snapshot []byte, err error)
	// FinishFrame blocks until every node has finished the frame.
	FinishFrame(ctx context.Context, node int) error
}

// Committer publishes snapshots. Versions are totally ordered and start at 1.
type Committer interface {
	Commit(snapshot []byte) (version uint64)
}

var errNode = errors.New("node index out of range")

// Hub is an in-process [FrameSync] and [Committer] for a fixed number of nodes.
// There is no frame timeout: a node that never arrives blocks the others until
// their contexts are cancelled.
type Hub struct {
	mu       sync.Mutex
	nodes    int
	version  uint64
	snapshot []byte
	// Version pinned for the frame in progress.
	frameVersion  uint64
	frameSnapshot []byte
	start, finish barrier
}

// NewHub returns a hub for the given number of nodes.
func NewHub(nodes int) *Hub {
	if nodes <= 0 {
		panic("cluster: hub needs at least one node")
	}
	h := &Hub{nodes: nodes}
	h.start.init(nodes)
	h.finish.init(nodes)
	return h
}

// Nodes returns the number of nodes.
func (h *Hub) Nodes() int { return h.nodes }

// Commit stores a copy of snapshot as the next version.
func (h *Hub) Commit(snapshot []byte) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version++
	h.snapshot = append([]byte(nil), snapshot...)
	return h.version
}

// Version returns the last committed version, zero before the first commit.
func (h *Hub) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// StartFrame implements [FrameSync]. The returned snapshot must not be modified.
func (h *Hub) StartFrame(ctx context.Context, node int) (uint64, []byte, error) {
	if node < 0 || node >= h.nodes {
		return 0, nil, fmt.Errorf("%w: %d", errNode, node)
	}
	err := h.start.wait(ctx, &h.mu, func() {
		h.frameVersion, h.frameSnapshot = h.version, h.snapshot
	})
	if err != nil {
		return 0, nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frameVersion, h.frameSnapshot, nil
}

// FinishFrame implements [FrameSync].
func (h *Hub) FinishFrame(ctx context.Context, node int) error {
	if node < 0 || node >= h.nodes {
		return fmt.Errorf("%w: %d", errNode, node)
	}
	return h.finish.wait(ctx, &h.mu, nil)
}

// barrier releases waiters once n have arrived. Each release starts a new generation.
type barrier struct {
	n       int
	arrived int
	release chan struct{}
}

func (b *barrier) init(n int) {
	b.n = n
	b.release = make(chan struct{})
}

// wait blocks until n callers have arrived or ctx is done. The last arriver runs
// onRelease with mu held before anyone is released.
func (b *barrier) wait(ctx context.Context, mu *sync.Mutex, onRelease func()) error {
	mu.Lock()
	ch := b.release
	b.arrived++
	if b.arrived == b.n {
		if onRelease != nil {
			onRelease()
		}
		b.arrived = 0
		b.release = make(chan struct{})
		close(ch)
		mu.Unlock()
		return nil
	}
	mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
	}
	mu.Lock()
	defer mu.Unlock()
	select {
	case <-ch:
		// Released while cancelling; the frame went ahead with us counted.
		return nil
	default:
	}
	b.arrived--
	return ctx.Err()
}
