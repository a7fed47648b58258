// Package glgpu implements [viewer.Device] on OpenGL 4.6 core. Requires cgo.
package glgpu

import "errors"

var errNoCGO = errors.New("OpenGL rendering requires CGo and is not supported on TinyGo")
