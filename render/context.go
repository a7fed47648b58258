// Package render models GPU contexts, the windows drawing through them, and the
// scheduler that sequences shared and per-window renderer lifecycle calls.
//
// Everything in this package runs on the thread owning the GL contexts. No
// method is safe for concurrent use.
package render

// Binder binds a GPU context to the calling thread. Binding is a thread-local
// pointer swap; callers rebind before every GL call sequence. The [Manager]
// calls DoneCurrent once it finishes with a context so that another thread may
// bind it.
type Binder interface {
	MakeCurrent()
	DoneCurrent()
}

// Renderer owns the GPU resources of one shared context. The [Manager] calls
// its hooks in a fixed order; the shared hooks run with the context's own
// binding current and the window hooks with the window's binding current.
type Renderer interface {
	// InitShared creates resources shared by all windows of the context.
	// An error is fatal to the context.
	InitShared() error
	// ExitShared releases shared resources after every window has exited.
	ExitShared()
	// InitWindow creates window local resources. InitShared has already run.
	InitWindow(w Window) error
	ExitWindow(w Window)
	// PreRenderShared and PostRenderShared run once per rendered frame around
	// all window renders of the context.
	PreRenderShared()
	PostRenderShared()
	PreRenderWindow(w Window)
	PostRenderWindow(w Window)
	// NeedsRendering reports whether the shared state changed since the last frame.
	NeedsRendering() bool
	// Update advances time based state. It runs once per tick whether or not
	// rendering happens.
	Update()
}

// RendererFactory creates the renderer of a context.
type RendererFactory interface {
	NewRenderer(ctx *Context) Renderer
}

// RendererFactoryFunc adapts a function to [RendererFactory].
type RendererFactoryFunc func(ctx *Context) Renderer

// NewRenderer implements [RendererFactory].
func (f RendererFactoryFunc) NewRenderer(ctx *Context) Renderer { return f(ctx) }

// Context is a GPU context. It owns exactly one renderer, created on first use
// so that no GPU binding is needed when the context is constructed.
type Context struct {
	binder   Binder
	factory  RendererFactory
	renderer Renderer
}

// NewContext returns a context bound through b whose renderer is created by f.
func NewContext(b Binder, f RendererFactory) *Context {
	if b == nil || f == nil {
		panic("render: nil binder or renderer factory")
	}
	return &Context{binder: b, factory: f}
}

// Renderer returns the context's renderer, creating it on the first call.
func (c *Context) Renderer() Renderer {
	if c.renderer == nil {
		c.renderer = c.factory.NewRenderer(c)
		if c.renderer == nil {
			panic("render: factory returned nil renderer")
		}
	}
	return c.renderer
}

// HasRenderer reports whether the renderer has been created.
func (c *Context) HasRenderer() bool { return c.renderer != nil }

// Binder returns the binder the context was created with.
func (c *Context) Binder() Binder { return c.binder }

func (c *Context) MakeCurrent() { c.binder.MakeCurrent() }
func (c *Context) DoneCurrent() { c.binder.DoneCurrent() }

// Window is a drawable surface bound to exactly one, possibly shared, context.
type Window interface {
	Context() *Context
	// MakeCurrent binds the window's surface and context.
	MakeCurrent()
	// NeedsRendering reports window local changes such as a resize or navigation.
	NeedsRendering() bool
	// Render draws the window. It is called between PreRenderWindow and
	// PostRenderWindow and must clear the window's needs rendering flag.
	Render()
	SwapBuffers()
}
