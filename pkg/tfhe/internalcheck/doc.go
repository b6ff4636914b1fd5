// Package internalcheck holds static policy tests over the module's own
// packages. It exports nothing.
//
// The checks load source with golang.org/x/tools/go/packages and fail on:
//
//   - == or != between byte slices or byte arrays (use bytes.Equal or
//     crypto/subtle)
//   - %x formatting verbs, which tend to leak key or plaintext bytes into
//     logs and errors
//   - import "C" outside the packages that own the native boundary
package internalcheck
