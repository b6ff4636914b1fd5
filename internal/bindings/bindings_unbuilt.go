//go:build cgo && !tfhers

package bindings

// cgo is available but the native library was not requested at build time.
var errUnavailable = ErrNotBuilt
