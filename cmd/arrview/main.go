// Command arrview displays 2D arrays described by a TOML or YAML sidecar file.
//
//	arrview [flags] image.toml
//
// Mouse: left drag pans (2D) or rotates (3D), right drag zooms (2D) or shifts
// (3D), middle drag dollies, wheel zooms. Keys: N toggles 2D/3D navigation,
// R resets the view, C toggles the color map, G cycles gradients, TAB cycles
// components, S saves a TIFF screenshot, Q or ESC quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/soypat/arrview/render"
)

type config struct {
	desc       string
	width      int
	height     int
	windows    int
	nodes      int
	nav3D      bool
	gradient   string
	component  int
	colorMap   bool
	screenshot string
	watch      bool
	idle       time.Duration
}

var errQuit = errors.New("quit")

func init() {
	// GLFW and the GL contexts are bound to the main thread.
	runtime.LockOSThread()
}

func main() {
	var cfg config
	var verbose bool
	flag.IntVar(&cfg.width, "width", 800, "window width in pixels")
	flag.IntVar(&cfg.height, "height", 600, "window height in pixels")
	flag.IntVar(&cfg.windows, "windows", 1, "number of windows sharing one GL context")
	flag.IntVar(&cfg.nodes, "nodes", 1, "number of synchronized render nodes, each with its own context")
	flag.BoolVar(&cfg.nav3D, "3d", false, "start with 3D navigation")
	flag.StringVar(&cfg.gradient, "gradient", "", "color map gradient: gray, heat, rainbow, diverging, terrain")
	flag.IntVar(&cfg.component, "component", -1, "component to display, -1 selects automatically")
	flag.BoolVar(&cfg.colorMap, "colormap", false, "enable the color map")
	flag.StringVar(&cfg.screenshot, "screenshot", "", "render one frame to this TIFF file and exit")
	flag.BoolVar(&cfg.watch, "watch", true, "reload when the description or data file changes")
	flag.DurationVar(&cfg.idle, "idle", time.Second/60, "sleep between frames when nothing changes")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] description.{toml,yaml}\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.desc = flag.Arg(0)

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := cfg.validate()
	if err == nil {
		err = run(cfg)
	}
	if err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}

func (cfg config) validate() error {
	switch {
	case cfg.width <= 0 || cfg.height <= 0:
		return errors.New("window size must be positive")
	case cfg.windows < 1:
		return errors.New("need at least one window")
	case cfg.nodes < 1:
		return errors.New("need at least one node")
	case cfg.nodes > 1 && cfg.screenshot != "":
		return errors.New("screenshot mode runs a single node")
	}
	return nil
}
