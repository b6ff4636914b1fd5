// Package tfhe evaluates arithmetic, comparison and selection over encrypted
// unsigned integers of 8, 16 and 32 bits.
//
// A KeyStore holds the resident client, server and public keys. An Engine
// reads the store to encrypt, decrypt and evaluate; it never holds keys of its
// own. Open wires both from a Config:
//
//	lib, err := tfhe.Open(tfhe.DefaultConfig(home))
//	if err != nil {
//		return err
//	}
//	defer lib.Close()
//	sum, err := lib.Engine().MathOperation(a, b, tfhe.Add, tfhe.Uint8)
//
// The homomorphic scheme itself sits behind the Scheme interface. NativeScheme
// is the tfhe-rs backend, linked when built with cgo and the tfhers tag.
//
// Every failure wraps one of the sentinel errors (ErrNoKeyLoaded, ErrDecode and
// so on); use errors.Is or KindOf to classify it.
package tfhe
