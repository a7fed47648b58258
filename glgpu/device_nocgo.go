//go:build tinygo || !cgo

package glgpu

// Device is unavailable without cgo.
type Device struct{}

// New returns an error without cgo.
func New() (*Device, error) {
	return nil, errNoCGO
}
