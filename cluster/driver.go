package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/soypat/arrview/render"
)

// SnapshotReader applies a renderer snapshot.
type SnapshotReader interface {
	ReadSnapshot(r io.Reader) error
}

// SnapshotWriter produces a renderer snapshot.
type SnapshotWriter interface {
	WriteSnapshot(w io.Writer) error
}

// Publish writes the snapshot of src and commits it.
func Publish(c Committer, src SnapshotWriter) (uint64, error) {
	var buf bytes.Buffer
	if err := src.WriteSnapshot(&buf); err != nil {
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}
	v := c.Commit(buf.Bytes())
	render.Logger().Debug("snapshot committed", "version", v, "bytes", buf.Len())
	return v, nil
}

// Driver runs the frames of one node. Renderers are the renderers of every
// context on the node and receive each new snapshot before local rendering.
// The master node, whose renderers produced the snapshots, leaves Renderers empty.
type Driver struct {
	Sync      FrameSync
	Node      int
	Manager   *render.Manager
	Renderers []SnapshotReader

	applied uint64
}

// Applied returns the last snapshot version applied.
func (d *Driver) Applied() uint64 { return d.applied }

// Frame runs one synchronized frame: start, apply a new snapshot if the version
// changed, update and render locally, finish. It reports whether anything was drawn.
func (d *Driver) Frame(ctx context.Context) (bool, error) {
	version, snapshot, err := d.Sync.StartFrame(ctx, d.Node)
	if err != nil {
		return false, fmt.Errorf("node %d start frame: %w", d.Node, err)
	}
	if version != d.applied && snapshot != nil {
		for _, r := range d.Renderers {
			if err := r.ReadSnapshot(bytes.NewReader(snapshot)); err != nil {
				// Still finish so the other nodes are not blocked by a bad snapshot.
				render.Logger().Error("applying snapshot", "node", d.Node, "version", version, "err", err)
				if ferr := d.Sync.FinishFrame(ctx, d.Node); ferr != nil {
					return false, ferr
				}
				return false, fmt.Errorf("node %d snapshot %d: %w", d.Node, version, err)
			}
		}
		d.applied = version
	}
	d.Manager.Update()
	rendered := d.Manager.Render()
	if err := d.Sync.FinishFrame(ctx, d.Node); err != nil {
		return rendered, fmt.Errorf("node %d finish frame: %w", d.Node, err)
	}
	return rendered, nil
}

// Run calls Frame until ctx is done or a frame fails, sleeping idle after
// frames that drew nothing. poll runs before every frame and may be nil.
func (d *Driver) Run(ctx context.Context, idle time.Duration, poll func() error) error {
	for {
		if poll != nil {
			if err := poll(); err != nil {
				return err
			}
		}
		rendered, err := d.Frame(ctx)
		if err != nil {
			return err
		}
		if rendered {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}
