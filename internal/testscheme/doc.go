// Package testscheme is an insecure reference implementation of tfhe.Scheme.
//
// Ciphertexts carry their plaintext in the clear. The package exists so the
// engine, the boundary surface and the CLI can be exercised without the native
// tfhe-rs library. Its arithmetic follows tfhe.Op.Eval exactly, which is the
// policy of the tfhe-rs integer API. Never use it to protect data.
package testscheme
