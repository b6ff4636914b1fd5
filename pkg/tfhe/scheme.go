package tfhe

// Scheme is the FHE backend driven by the engine. The engine treats it as an
// opaque capability reachable through key objects; lattice arithmetic,
// bootstrapping and noise management all live behind this interface.
//
// Ciphertext and key wire formats are defined by the Scheme. The engine only
// relies on round-tripping through its own Serialize and Parse methods being
// lossless.
type Scheme interface {
	// Name identifies the backend in logs and version strings.
	Name() string

	// GenerateKeys runs key generation and returns the serialized key set.
	GenerateKeys() (KeyMaterial, error)

	ParseClientKey(data []byte) (ClientKey, error)
	ParseServerKey(data []byte) (ServerKey, error)
	ParsePublicKey(data []byte) (PublicKey, error)

	// Expand converts a compressed ciphertext of width t into its expanded,
	// evaluable serialized form.
	Expand(compressed []byte, t UintType) ([]byte, error)
}

// KeyMaterial is a freshly generated, serialized key set.
type KeyMaterial struct {
	Client []byte
	Server []byte
	Public []byte
}

// Key is the behaviour every resident key shares.
type Key interface {
	Serialize() ([]byte, error)
}

// Releaser is implemented by keys and values that own native resources. The
// engine calls Release once the object is no longer reachable from any reader.
type Releaser interface {
	Release()
}

// ClientKey encrypts and decrypts directly.
type ClientKey interface {
	Key
	// Encrypt returns an expanded ciphertext.
	Encrypt(v uint64, t UintType) ([]byte, error)
	// EncryptCompressed returns a compressed ciphertext accepted by
	// Scheme.Expand.
	EncryptCompressed(v uint64, t UintType) ([]byte, error)
	Decrypt(ct []byte, t UintType) (uint64, error)
}

// PublicKey encrypts only.
type PublicKey interface {
	Key
	Encrypt(v uint64, t UintType) ([]byte, error)
	EncryptCompressed(v uint64, t UintType) ([]byte, error)
}

// ServerKey evaluates homomorphic operations on deserialized values.
type ServerKey interface {
	Key
	// Deserialize parses an expanded ciphertext of width t.
	Deserialize(ct []byte, t UintType) (Value, error)
	TrivialEncrypt(v uint64, t UintType) (Value, error)
	Binary(op Op, lhs, rhs Value) (Value, error)
	Unary(op UnaryOp, v Value) (Value, error)
	Cast(v Value, to UintType) (Value, error)
	// Select returns ifTrue where control is nonzero and ifFalse otherwise.
	Select(control, ifTrue, ifFalse Value) (Value, error)
}

// Value is a deserialized ciphertext held by a ServerKey.
type Value interface {
	Type() UintType
	Serialize() ([]byte, error)
	Release()
}

func release(v any) {
	if r, ok := v.(Releaser); ok {
		r.Release()
	}
}
