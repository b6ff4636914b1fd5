//go:build !cgo

package bindings

var errUnavailable = ErrCGONotEnabled
