package render

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// fpsSamples is the number of frame intervals averaged by [Manager.FPS].
const fpsSamples = 8

type groupState uint8

const (
	groupUninitialized groupState = iota
	// groupShared means InitShared ran and windows may be initialized.
	groupShared
)

// group holds the windows sharing one context. The set of initialized windows
// decides when shared teardown runs: exactly once, after the last window exits.
type group struct {
	ctx     *Context
	state   groupState
	windows []Window
	ready   map[Window]bool
}

func (g *group) renderer() Renderer { return g.ctx.Renderer() }

// Manager schedules rendering of windows grouped by shared context.
type Manager struct {
	groups      []*group
	byCtx       map[*Context]*group
	initialized bool

	now       func() time.Time
	last      time.Time
	intervals [fpsSamples]time.Duration
	nsamples  int
	fps       float32
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{byCtx: make(map[*Context]*group), now: time.Now}
}

// SetClock replaces the time source used for frame rate measurement.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Windows returns the number of managed windows.
func (m *Manager) Windows() (n int) {
	for _, g := range m.groups {
		n += len(g.windows)
	}
	return n
}

// Contexts returns the number of distinct contexts.
func (m *Manager) Contexts() int { return len(m.groups) }

// AddWindow adds w to the group of its context. After [Manager.InitGL] the
// window is initialized right away, preceded by shared initialization if its
// context is new.
func (m *Manager) AddWindow(w Window) error {
	ctx := w.Context()
	if ctx == nil {
		return errors.New("render: window has no context")
	}
	g := m.byCtx[ctx]
	if g == nil {
		g = &group{ctx: ctx, ready: make(map[Window]bool)}
		m.byCtx[ctx] = g
		m.groups = append(m.groups, g)
	}
	for _, other := range g.windows {
		if other == w {
			return errors.New("render: window added twice")
		}
	}
	g.windows = append(g.windows, w)
	if !m.initialized {
		return nil
	}
	defer g.ctx.DoneCurrent()
	if err := m.initShared(g); err != nil {
		m.detach(g, w)
		return err
	}
	if err := m.initWindow(g, w); err != nil {
		m.detach(g, w)
		return err
	}
	return nil
}

// RemoveWindow removes w. If GL is initialized its window resources are
// released, and removing the last window of a context releases shared resources.
func (m *Manager) RemoveWindow(w Window) {
	g := m.byCtx[w.Context()]
	if g == nil {
		return
	}
	bound := g.ready[w] || (len(g.windows) == 1 && g.state == groupShared)
	if g.ready[w] {
		w.MakeCurrent()
		g.renderer().ExitWindow(w)
		delete(g.ready, w)
	}
	m.detach(g, w)
	if bound {
		g.ctx.DoneCurrent()
	}
}

// detach removes w from g and drops g once empty, exiting shared state if needed.
func (m *Manager) detach(g *group, w Window) {
	for i, other := range g.windows {
		if other == w {
			g.windows = append(g.windows[:i], g.windows[i+1:]...)
			break
		}
	}
	if len(g.windows) > 0 {
		return
	}
	if g.state == groupShared {
		m.exitShared(g)
	}
	delete(m.byCtx, g.ctx)
	for i, other := range m.groups {
		if other == g {
			m.groups = append(m.groups[:i], m.groups[i+1:]...)
			break
		}
	}
	Logger().Info("context removed", "contexts", len(m.groups))
}

// InitGL initializes shared state once per context, then every window of that
// context. On error the already initialized state is torn down. No context is
// left current on return.
func (m *Manager) InitGL() error {
	if m.initialized {
		return nil
	}
	for _, g := range m.iter() {
		err := m.initGroup(g)
		g.ctx.DoneCurrent()
		if err != nil {
			m.exitAll()
			return err
		}
	}
	m.initialized = true
	Logger().Info("GL initialized", "contexts", len(m.groups), "windows", m.Windows())
	return nil
}

// ExitGL tears down every window, then the shared state of every context.
func (m *Manager) ExitGL() {
	if !m.initialized {
		return
	}
	m.exitAll()
	m.initialized = false
}

func (m *Manager) exitAll() {
	for _, g := range m.groups {
		bound := false
		for _, w := range g.windows {
			if g.ready[w] {
				w.MakeCurrent()
				g.renderer().ExitWindow(w)
				delete(g.ready, w)
				bound = true
			}
		}
		if g.state == groupShared {
			m.exitShared(g)
			bound = true
		}
		if bound {
			g.ctx.DoneCurrent()
		}
	}
}

func (m *Manager) initGroup(g *group) error {
	if err := m.initShared(g); err != nil {
		return err
	}
	for _, w := range g.windows {
		if err := m.initWindow(g, w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) initShared(g *group) error {
	if g.state == groupShared {
		return nil
	}
	g.ctx.MakeCurrent()
	if err := g.renderer().InitShared(); err != nil {
		Logger().Error("shared initialization failed", "err", err)
		return fmt.Errorf("initializing shared context: %w", err)
	}
	g.state = groupShared
	return nil
}

func (m *Manager) initWindow(g *group, w Window) error {
	w.MakeCurrent()
	if err := g.renderer().InitWindow(w); err != nil {
		Logger().Error("window initialization failed", "err", err)
		return fmt.Errorf("initializing window: %w", err)
	}
	g.ready[w] = true
	return nil
}

func (m *Manager) exitShared(g *group) {
	g.ctx.MakeCurrent()
	g.renderer().ExitShared()
	g.state = groupUninitialized
}

// iter returns the groups, checking that none is empty.
func (m *Manager) iter() []*group {
	for _, g := range m.groups {
		if len(g.windows) == 0 {
			panic("render: context group without windows")
		}
	}
	return m.groups
}

// Render draws every context whose renderer needs rendering and every window
// that needs rendering on its own. It reports whether anything was drawn; callers
// should idle briefly when it returns false.
func (m *Manager) Render() bool {
	rendered := false
	for _, g := range m.iter() {
		if g.state != groupShared {
			continue
		}
		r := g.renderer()
		ctxMust := r.NeedsRendering()
		wndMust := ctxMust
		for _, w := range g.windows {
			wndMust = wndMust || w.NeedsRendering()
		}
		if !wndMust {
			continue
		}
		g.ctx.MakeCurrent()
		r.PreRenderShared()
		for _, w := range g.windows {
			if !g.ready[w] || !(ctxMust || w.NeedsRendering()) {
				continue
			}
			w.MakeCurrent()
			r.PreRenderWindow(w)
			w.Render()
			r.PostRenderWindow(w)
			w.SwapBuffers()
		}
		g.ctx.MakeCurrent()
		r.PostRenderShared()
		g.ctx.DoneCurrent()
		rendered = true
	}
	if rendered {
		m.sampleFrame()
	}
	return rendered
}

// Update runs the time based update of every context's renderer.
func (m *Manager) Update() {
	for _, g := range m.iter() {
		g.renderer().Update()
	}
}

// FPS returns the frame rate averaged over the last 8 frame intervals, or zero
// until that many frames have been rendered.
func (m *Manager) FPS() float32 { return m.fps }

func (m *Manager) sampleFrame() {
	now := m.now()
	if !m.last.IsZero() {
		m.intervals[m.nsamples%fpsSamples] = now.Sub(m.last)
		m.nsamples++
	}
	m.last = now
	if m.nsamples < fpsSamples {
		return
	}
	var sum time.Duration
	for _, d := range m.intervals {
		sum += d
	}
	if sum > 0 {
		m.fps = float32(fpsSamples) / float32(sum.Seconds())
	}
}

// RenderLoop calls poll, Update and Render until ctx is cancelled or poll
// returns an error. It sleeps for idle whenever nothing was rendered. A nil poll
// is skipped. The loop must run on the thread owning the contexts.
func (m *Manager) RenderLoop(ctx context.Context, idle time.Duration, poll func() error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if poll != nil {
			if err := poll(); err != nil {
				return err
			}
		}
		m.Update()
		if m.Render() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}
