package tfhe

import "github.com/fhenixprotocol/go-tfhe/internal/bindings"

var (
	WrapperVersion = "v0.0.0-in-progress"
	UpstreamName   = "tfhe-rs"
)

// Version returns the semantic version populated at build time via ldflags.
// In development it defaults to v0.0.0-in-progress.
func Version() string {
	return WrapperVersion
}

// BackendVersion returns the version string reported by the native bindings
// or "unavailable" when they are not linked.
func BackendVersion() string {
	if v := bindings.Version(); v != "" {
		return v
	}
	return "unavailable"
}
