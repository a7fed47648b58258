//go:build tinygo || !cgo

package main

import "errors"

func run(cfg config) error {
	return errors.New("arrview requires cgo for OpenGL rendering")
}
