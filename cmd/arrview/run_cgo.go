//go:build !tinygo && cgo

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/arrview/cluster"
	"github.com/soypat/arrview/glgpu"
	"github.com/soypat/arrview/glm"
	"github.com/soypat/arrview/render"
	"github.com/soypat/arrview/viewer"
)

// wheelStep is the rotation of one scroll wheel notch.
var wheelStep = glm.Radians1(15)

type glfwBinder struct{ w *glfw.Window }

func (b glfwBinder) MakeCurrent() { b.w.MakeContextCurrent() }
func (b glfwBinder) DoneCurrent() { glfw.DetachCurrentContext() }

type glfwSurface struct{ w *glfw.Window }

func (s glfwSurface) MakeCurrent() { s.w.MakeContextCurrent() }
func (s glfwSurface) SwapBuffers() { s.w.SwapBuffers() }

// node is one render node: a hidden window owning the shared context and
// the visible windows sharing with it.
type node struct {
	share   *glfw.Window
	dev     *glgpu.Device
	ctx     *render.Context
	mgr     *render.Manager
	order   []*glfw.Window
	windows map[*glfw.Window]*viewer.Window
}

func (n *node) renderer() *viewer.Renderer { return n.ctx.Renderer().(*viewer.Renderer) }

// release exits GL on every window of the node and frees the device's own objects.
func (n *node) release() {
	n.mgr.ExitGL()
	n.share.MakeContextCurrent()
	n.dev.Delete()
	glfw.DetachCurrentContext()
}

type app struct {
	cfg     config
	data    *dataset
	master  *node
	hub     *cluster.Hub
	watcher *reloader
	quit    bool
}

func run(cfg config) error {
	data, err := loadDataset(cfg.desc, cfg)
	if err != nil {
		return err
	}
	term, err := startGLFW()
	if err != nil {
		return err
	}
	defer term()

	a := &app{cfg: cfg, data: data}
	nodes := make([]*node, cfg.nodes)
	for i := range nodes {
		nodes[i], err = newNode(cfg, i)
		if err != nil {
			return err
		}
	}
	a.master = nodes[0]
	for _, gw := range a.master.order {
		a.bindInput(gw, a.master.windows[gw])
	}
	r := a.master.renderer()
	r.SetData(data.arr, data.stats)
	r.SetViewParams(data.params)

	if cfg.screenshot != "" {
		return a.screenshot(cfg.screenshot, a.master.windows[a.master.order[0]])
	}
	if cfg.watch {
		a.watcher, err = newReloader(100*time.Millisecond, cfg.desc, data.desc.Path())
		if err != nil {
			return err
		}
		defer a.watcher.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if len(nodes) == 1 {
		if err := a.master.mgr.InitGL(); err != nil {
			return err
		}
		defer a.master.release()
		err = a.master.mgr.RenderLoop(ctx, cfg.idle, a.poll)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return a.runCluster(ctx, cancel, nodes)
}

// runCluster runs the master node on the main thread, where GLFW events are
// processed, and every other node on its own locked thread.
func (a *app) runCluster(ctx context.Context, cancel context.CancelFunc, nodes []*node) error {
	a.hub = cluster.NewHub(len(nodes))
	var wg sync.WaitGroup
	errc := make(chan error, len(nodes))
	for i := 1; i < len(nodes); i++ {
		wg.Add(1)
		go func(i int, n *node) {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			if err := n.mgr.InitGL(); err != nil {
				errc <- fmt.Errorf("node %d: %w", i, err)
				cancel()
				return
			}
			defer n.release()
			d := cluster.Driver{Sync: a.hub, Node: i, Manager: n.mgr, Renderers: []cluster.SnapshotReader{n.renderer()}}
			err := d.Run(ctx, a.cfg.idle, nil)
			if err != nil && ctx.Err() == nil {
				errc <- err
				cancel()
			}
		}(i, nodes[i])
	}

	err := a.master.mgr.InitGL()
	if err == nil {
		d := cluster.Driver{Sync: a.hub, Node: 0, Manager: a.master.mgr}
		err = d.Run(ctx, a.cfg.idle, a.poll)
		a.master.release()
	}
	cancel()
	wg.Wait()
	close(errc)
	for nodeErr := range errc {
		if err == nil || errors.Is(err, context.Canceled) {
			err = nodeErr
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func startGLFW() (term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	return glfw.Terminate, nil
}

// newNode creates the windows of node i and leaves no context current.
func newNode(cfg config, i int) (*node, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	share, err := glfw.CreateWindow(1, 1, "arrview shared", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating shared context: %w", err)
	}
	share.MakeContextCurrent()
	defer glfw.DetachCurrentContext()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	dev, err := glgpu.New()
	if err != nil {
		return nil, err
	}
	n := &node{
		share:   share,
		dev:     dev,
		ctx:     render.NewContext(glfwBinder{share}, viewer.NewFactory(func(*render.Context) viewer.Device { return dev })),
		mgr:     render.NewManager(),
		windows: make(map[*glfw.Window]*viewer.Window),
	}
	if cfg.screenshot == "" {
		glfw.WindowHint(glfw.Visible, glfw.True)
	}
	// Only the master node's windows take input.
	glfw.WindowHint(glfw.Resizable, boolHint(i == 0))
	for j := range cfg.windows {
		title := fmt.Sprintf("arrview %s", cfg.desc)
		if cfg.nodes > 1 || cfg.windows > 1 {
			title = fmt.Sprintf("%s [%d.%d]", title, i, j)
		}
		gw, err := glfw.CreateWindow(cfg.width, cfg.height, title, nil, share)
		if err != nil {
			return nil, fmt.Errorf("creating window: %w", err)
		}
		fw, fh := gw.GetFramebufferSize()
		vw := viewer.NewWindow(n.ctx, glfwSurface{gw}, fw, fh)
		if cfg.nav3D {
			vw.SetNavigation(viewer.Navigation3D)
		}
		if err := n.mgr.AddWindow(vw); err != nil {
			return nil, err
		}
		n.order = append(n.order, gw)
		n.windows[gw] = vw
	}
	return n, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// poll processes window events and file changes before every master frame.
func (a *app) poll() error {
	glfw.PollEvents()
	if a.quit {
		return errQuit
	}
	n := a.master
	for _, gw := range n.order {
		vw, ok := n.windows[gw]
		if ok && gw.ShouldClose() {
			n.mgr.RemoveWindow(vw)
			delete(n.windows, gw)
			gw.Hide()
		}
	}
	if len(n.windows) == 0 {
		return errQuit
	}
	if a.watcher != nil && a.watcher.poll(time.Now()) {
		a.reload()
	}
	if r := n.renderer(); a.hub != nil && r.SnapshotPending() {
		if _, err := cluster.Publish(a.hub, r); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) reload() {
	d, err := loadDataset(a.cfg.desc, a.cfg)
	if err != nil {
		render.Logger().Error("reloading", "desc", a.cfg.desc, "err", err)
		return
	}
	r := a.master.renderer()
	r.SetData(d.arr, d.stats)
	if !sameShape(a.data.arr.Header, d.arr.Header) {
		r.SetViewParams(d.params)
	}
	a.data = d
	render.Logger().Info("reloaded", "desc", a.cfg.desc, "dims", d.arr.Dims)
}

func (a *app) screenshot(path string, vw *viewer.Window) error {
	mgr := a.master.mgr
	if err := mgr.InitGL(); err != nil {
		return err
	}
	defer a.master.release()
	img, err := vw.Screenshot()
	if err != nil {
		return err
	}
	if err := writeTIFF(path, img); err != nil {
		return err
	}
	render.Logger().Info("wrote screenshot", "path", path, "size", img.Bounds().Size())
	return nil
}

func (a *app) bindInput(gw *glfw.Window, vw *viewer.Window) {
	gw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		vw.Resize(width, height)
	})
	gw.SetMouseButtonCallback(func(w *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		btn, ok := buttonOf(b)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			x, y := w.GetCursorPos()
			vw.Press(btn, framebufferPoint(w, x, y))
		case glfw.Release:
			vw.Release(btn)
		}
	})
	gw.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		vw.Move(framebufferPoint(w, x, y))
	})
	gw.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		vw.Wheel(float32(yoff) * wheelStep)
	})
	gw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press {
			a.key(key, vw)
		}
	})
}

func (a *app) key(key glfw.Key, vw *viewer.Window) {
	r := a.master.renderer()
	p := r.ViewParams()
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		a.quit = true
		return
	case glfw.KeyR:
		vw.ResetView()
		return
	case glfw.KeyN:
		if vw.Navigation() == viewer.Navigation2D {
			vw.SetNavigation(viewer.Navigation3D)
		} else {
			vw.SetNavigation(viewer.Navigation2D)
		}
		return
	case glfw.KeyS:
		path := fmt.Sprintf("arrview-%s.tiff", time.Now().Format("20060102-150405"))
		img, err := vw.Screenshot()
		if err == nil {
			err = writeTIFF(path, img)
		}
		if err != nil {
			render.Logger().Error("screenshot", "err", err)
		} else {
			render.Logger().Info("wrote screenshot", "path", path)
		}
		return
	case glfw.KeyC:
		toggleColorMap(&p)
	case glfw.KeyG:
		cycleGradient(&p)
	case glfw.KeyTab:
		cycleComponent(&p)
	default:
		return
	}
	r.SetViewParams(p)
}

func buttonOf(b glfw.MouseButton) (viewer.Button, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return viewer.ButtonLeft, true
	case glfw.MouseButtonRight:
		return viewer.ButtonRight, true
	case glfw.MouseButtonMiddle:
		return viewer.ButtonMiddle, true
	}
	return 0, false
}

// framebufferPoint converts window coordinates to framebuffer pixels.
func framebufferPoint(w *glfw.Window, x, y float64) image.Point {
	ww, wh := w.GetSize()
	fw, fh := w.GetFramebufferSize()
	if ww > 0 && wh > 0 {
		x *= float64(fw) / float64(ww)
		y *= float64(fh) / float64(wh)
	}
	return image.Pt(int(x), int(y))
}
