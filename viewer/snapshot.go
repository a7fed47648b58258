package viewer

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/soypat/arrview/ndarray"
	"github.com/soypat/arrview/view"
)

const (
	snapParamsChanged uint8 = 1 << iota
)

// SnapshotPending reports whether data or view parameters changed since the last snapshot.
func (r *Renderer) SnapshotPending() bool { return r.dataDirty || r.paramsDirty }

// WriteSnapshot writes the renderer state needed to reconstruct it elsewhere:
// a dirty flag followed by the array when it changed since the last snapshot,
// the statistics, the view parameters, the last update time and the changed
// flags. GPU objects are not included. Writing clears the change tracking.
func (r *Renderer) WriteSnapshot(w io.Writer) error {
	le := binary.LittleEndian
	dirty := r.dataDirty && r.arr != nil
	if err := binary.Write(w, le, dirty); err != nil {
		return err
	}
	if dirty {
		if err := ndarray.WriteArray(w, r.arr); err != nil {
			return fmt.Errorf("snapshot array: %w", err)
		}
	}
	hasStats := r.stats != nil
	if err := binary.Write(w, le, hasStats); err != nil {
		return err
	}
	if hasStats {
		if err := ndarray.WriteStatistics(w, r.stats); err != nil {
			return fmt.Errorf("snapshot statistics: %w", err)
		}
	}
	if _, err := r.params.WriteTo(w); err != nil {
		return fmt.Errorf("snapshot view params: %w", err)
	}
	var flags uint8
	if r.paramsDirty {
		flags |= snapParamsChanged
	}
	var stamp int64
	if !r.lastUpdate.IsZero() {
		stamp = r.lastUpdate.UnixNano()
	}
	if err := binary.Write(w, le, stamp); err != nil {
		return err
	}
	if err := binary.Write(w, le, flags); err != nil {
		return err
	}
	r.dataDirty = false
	r.paramsDirty = false
	return nil
}

// ReadSnapshot applies a snapshot written by [Renderer.WriteSnapshot]. The array
// is replaced only when the snapshot carries one. On error the renderer is
// left unchanged.
func (r *Renderer) ReadSnapshot(rd io.Reader) error {
	le := binary.LittleEndian
	var dirty, hasStats bool
	if err := binary.Read(rd, le, &dirty); err != nil {
		return fmt.Errorf("snapshot dirty flag: %w", err)
	}
	var arr *ndarray.Array
	if dirty {
		var err error
		arr, err = ndarray.ReadArray(rd)
		if err != nil {
			return fmt.Errorf("snapshot array: %w", err)
		}
	}
	if err := binary.Read(rd, le, &hasStats); err != nil {
		return fmt.Errorf("snapshot statistics flag: %w", err)
	}
	var stats []ndarray.Statistics
	if hasStats {
		var err error
		stats, err = ndarray.ReadStatistics(rd)
		if err != nil {
			return fmt.Errorf("snapshot statistics: %w", err)
		}
	}
	var params view.Params
	if _, err := params.ReadFrom(rd); err != nil {
		return fmt.Errorf("snapshot view params: %w", err)
	}
	var stamp int64
	var flags uint8
	if err := binary.Read(rd, le, &stamp); err != nil {
		return fmt.Errorf("snapshot timestamp: %w", err)
	}
	if err := binary.Read(rd, le, &flags); err != nil {
		return fmt.Errorf("snapshot flags: %w", err)
	}
	if dirty {
		r.arr = arr
		r.reupload = true
	}
	r.stats = stats
	first := r.params.Mode == view.ModeNone
	r.params = params
	if first || flags&snapParamsChanged != 0 {
		r.viewChanged = true
	}
	r.lastUpdate = time.Time{}
	if stamp != 0 {
		r.lastUpdate = time.Unix(0, stamp)
	}
	r.needsRendering = true
	return nil
}
