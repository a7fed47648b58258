package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records lifecycle calls in order.
type journal struct{ calls []string }

func (j *journal) add(format string, args ...any) { j.calls = append(j.calls, fmt.Sprintf(format, args...)) }

func (j *journal) count(prefix string) (n int) {
	for _, c := range j.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (j *journal) index(call string) int {
	for i, c := range j.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeBinder struct {
	j    *journal
	name string
}

func (b *fakeBinder) MakeCurrent() { b.j.add("bind %s", b.name) }
func (b *fakeBinder) DoneCurrent() { b.j.add("unbind %s", b.name) }

type fakeRenderer struct {
	j          *journal
	name       string
	needs      bool
	failShared bool
	updates    int
}

func (r *fakeRenderer) InitShared() error {
	r.j.add("initShared %s", r.name)
	if r.failShared {
		return errors.New("no shader")
	}
	return nil
}

func (r *fakeRenderer) ExitShared()               { r.j.add("exitShared %s", r.name) }
func (r *fakeRenderer) InitWindow(w Window) error { r.j.add("initWindow %s", name(w)); return nil }
func (r *fakeRenderer) ExitWindow(w Window)       { r.j.add("exitWindow %s", name(w)) }
func (r *fakeRenderer) PreRenderShared()          { r.j.add("preShared %s", r.name) }
func (r *fakeRenderer) PostRenderShared()         { r.j.add("postShared %s", r.name); r.needs = false }
func (r *fakeRenderer) PreRenderWindow(w Window)  { r.j.add("preWindow %s", name(w)) }
func (r *fakeRenderer) PostRenderWindow(w Window) { r.j.add("postWindow %s", name(w)) }
func (r *fakeRenderer) NeedsRendering() bool      { return r.needs }
func (r *fakeRenderer) Update()                   { r.updates++ }

type fakeWindow struct {
	j     *journal
	name  string
	ctx   *Context
	needs bool
}

func name(w Window) string { return w.(*fakeWindow).name }

func (w *fakeWindow) Context() *Context    { return w.ctx }
func (w *fakeWindow) MakeCurrent()         { w.j.add("bind %s", w.name) }
func (w *fakeWindow) NeedsRendering() bool { return w.needs }
func (w *fakeWindow) Render()              { w.j.add("render %s", w.name); w.needs = false }
func (w *fakeWindow) SwapBuffers()         { w.j.add("swap %s", w.name) }

type fixture struct {
	j         *journal
	ctxA      *Context
	ctxB      *Context
	renderers map[string]*fakeRenderer
	w1, w2    *fakeWindow
	w3        *fakeWindow
	m         *Manager
}

// newFixture builds windows w1 and w2 sharing context A and w3 alone on context B.
func newFixture(t *testing.T) *fixture {
	f := &fixture{j: &journal{}, renderers: make(map[string]*fakeRenderer)}
	newCtx := func(name string) *Context {
		return NewContext(&fakeBinder{j: f.j, name: name}, RendererFactoryFunc(func(*Context) Renderer {
			r := &fakeRenderer{j: f.j, name: name}
			f.renderers[name] = r
			return r
		}))
	}
	f.ctxA, f.ctxB = newCtx("A"), newCtx("B")
	f.w1 = &fakeWindow{j: f.j, name: "w1", ctx: f.ctxA}
	f.w2 = &fakeWindow{j: f.j, name: "w2", ctx: f.ctxA}
	f.w3 = &fakeWindow{j: f.j, name: "w3", ctx: f.ctxB}
	f.m = NewManager()
	for _, w := range []*fakeWindow{f.w1, f.w2, f.w3} {
		require.NoError(t, f.m.AddWindow(w))
	}
	return f
}

func TestContextLazyRenderer(t *testing.T) {
	created := 0
	ctx := NewContext(&fakeBinder{j: &journal{}}, RendererFactoryFunc(func(c *Context) Renderer {
		created++
		return &fakeRenderer{j: &journal{}}
	}))
	assert.False(t, ctx.HasRenderer())
	r := ctx.Renderer()
	assert.Same(t, r, ctx.Renderer())
	assert.Equal(t, 1, created)
	assert.True(t, ctx.HasRenderer())
}

func TestSharedInitOnce(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 2, f.m.Contexts())
	assert.Equal(t, 3, f.m.Windows())
	require.NoError(t, f.m.InitGL())

	assert.Equal(t, 2, f.j.count("initShared"))
	assert.Equal(t, 3, f.j.count("initWindow"))
	a, b := f.j.index("initShared A"), f.j.index("initShared B")
	assert.Less(t, a, f.j.index("initWindow w1"))
	assert.Less(t, a, f.j.index("initWindow w2"))
	assert.Less(t, b, f.j.index("initWindow w3"))
	// Shared init runs with the context bound, window init with the window bound.
	assert.Equal(t, "bind A", f.j.calls[a-1])
	assert.Equal(t, "bind w1", f.j.calls[f.j.index("initWindow w1")-1])

	require.NoError(t, f.m.InitGL())
	assert.Equal(t, 2, f.j.count("initShared"), "InitGL is idempotent")
}

func TestBindingReleased(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	// Each context is released after its last window initializes.
	assert.Equal(t, 2, f.j.count("unbind"))
	assert.Equal(t, f.j.index("initWindow w2")+1, f.j.index("unbind A"))
	assert.Equal(t, f.j.index("initWindow w3")+1, f.j.index("unbind B"))
	assert.Equal(t, "unbind B", f.j.calls[len(f.j.calls)-1])

	f.j.calls = nil
	f.w1.needs = true
	f.w3.needs = true
	require.True(t, f.m.Render())
	assert.Equal(t, f.j.index("postShared A")+1, f.j.index("unbind A"))
	assert.Equal(t, "unbind B", f.j.calls[len(f.j.calls)-1])

	f.j.calls = nil
	f.m.ExitGL()
	assert.Equal(t, f.j.index("exitShared A")+1, f.j.index("unbind A"))
	assert.Equal(t, "unbind B", f.j.calls[len(f.j.calls)-1])
	assert.Equal(t, 2, f.j.count("unbind"))
}

func TestExitGLOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	f.j.calls = nil
	f.m.ExitGL()
	assert.Equal(t, 3, f.j.count("exitWindow"))
	assert.Equal(t, 2, f.j.count("exitShared"))
	assert.Less(t, f.j.index("exitWindow w1"), f.j.index("exitShared A"))
	assert.Less(t, f.j.index("exitWindow w2"), f.j.index("exitShared A"))
	assert.Less(t, f.j.index("exitWindow w3"), f.j.index("exitShared B"))
}

func TestRenderSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	f.j.calls = nil
	assert.False(t, f.m.Render(), "nothing needs rendering")
	assert.Empty(t, f.j.calls)

	// Only w2 needs rendering: context A renders w2 alone, B is untouched.
	f.w2.needs = true
	assert.True(t, f.m.Render())
	assert.Equal(t, []string{
		"bind A", "preShared A",
		"bind w2", "preWindow w2", "render w2", "postWindow w2", "swap w2",
		"bind A", "postShared A", "unbind A",
	}, f.j.calls)

	// The renderer of A needs rendering: every window of A renders.
	f.j.calls = nil
	f.renderers["A"].needs = true
	assert.True(t, f.m.Render())
	assert.Equal(t, 1, f.j.count("render w1"))
	assert.Equal(t, 1, f.j.count("render w2"))
	assert.Equal(t, 0, f.j.count("render w3"))
	assert.Equal(t, 1, f.j.count("preShared A"))
	assert.Equal(t, 1, f.j.count("postShared A"))
}

func TestRenderBeforeInit(t *testing.T) {
	f := newFixture(t)
	f.w1.needs = true
	assert.False(t, f.m.Render())
	assert.Zero(t, f.j.count("render"))
}

func TestAddRemoveAfterInit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	f.j.calls = nil

	ctxC := NewContext(&fakeBinder{j: f.j, name: "C"}, RendererFactoryFunc(func(*Context) Renderer {
		r := &fakeRenderer{j: f.j, name: "C"}
		f.renderers["C"] = r
		return r
	}))
	w4 := &fakeWindow{j: f.j, name: "w4", ctx: ctxC}
	require.NoError(t, f.m.AddWindow(w4))
	assert.Equal(t, []string{"bind C", "initShared C", "bind w4", "initWindow w4", "unbind C"}, f.j.calls)
	assert.Error(t, f.m.AddWindow(w4))

	f.j.calls = nil
	f.m.RemoveWindow(f.w1)
	assert.Equal(t, []string{"bind w1", "exitWindow w1", "unbind A"}, f.j.calls, "A still has w2")
	f.j.calls = nil
	f.m.RemoveWindow(f.w2)
	assert.Equal(t, []string{"bind w2", "exitWindow w2", "bind A", "exitShared A", "unbind A"}, f.j.calls)
	assert.Equal(t, 2, f.m.Contexts())
	assert.Equal(t, 2, f.m.Windows())
}

func TestInitSharedFailure(t *testing.T) {
	f := newFixture(t)
	f.ctxA.Renderer().(*fakeRenderer).failShared = true
	err := f.m.InitGL()
	require.Error(t, err)
	assert.Zero(t, f.j.count("initWindow w1"))
	f.w3.needs = true
	assert.False(t, f.m.Render())
}

func TestUpdateEveryContext(t *testing.T) {
	f := newFixture(t)
	f.m.Update()
	f.m.Update()
	assert.Equal(t, 2, f.renderers["A"].updates)
	assert.Equal(t, 2, f.renderers["B"].updates)
}

func TestFPS(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	now := time.Unix(0, 0)
	f.m.SetClock(func() time.Time { return now })
	for i := 0; i < fpsSamples; i++ {
		f.w3.needs = true
		require.True(t, f.m.Render())
		assert.Zero(t, f.m.FPS(), "frame %d", i)
		now = now.Add(20 * time.Millisecond)
	}
	f.w3.needs = true
	f.m.Render()
	assert.InDelta(t, 50, f.m.FPS(), 1e-3)

	// Frames that render nothing are not sampled.
	now = now.Add(time.Hour)
	assert.False(t, f.m.Render())
	assert.InDelta(t, 50, f.m.FPS(), 1e-3)
}

func TestRenderLoopCancel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.InitGL())
	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	err := f.m.RenderLoop(ctx, time.Millisecond, func() error {
		polls++
		if polls == 3 {
			cancel()
		}
		f.w1.needs = polls == 1
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.j.count("render w1"))

	errStop := errors.New("window closed")
	err = f.m.RenderLoop(context.Background(), time.Millisecond, func() error { return errStop })
	assert.ErrorIs(t, err, errStop)
}
