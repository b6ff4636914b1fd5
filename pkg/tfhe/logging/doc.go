// Package logging provides the logging facade used across go-tfhe.
//
// The Logger interface wraps the subset of log/slog that the engine needs. It is
// small on purpose so applications can substitute their own implementation for
// tests or redaction policies.
//
//	logger := logging.New(nil) // slog.Default()
//	logger.Info(ctx, "server key loaded", "bytes", len(sks))
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	logger = logging.New(slog.New(handler))
//
// # Redaction
//
// Key material and plaintexts must never reach a log sink. Use Redacted to
// record that a value existed without printing it:
//
//	logger.Debug(ctx, "client key parsed", logging.Redacted("client_key"))
//	// client_key="[redacted]"
//
// # Security Considerations
//
//   - Never log client keys, decrypted values or sealing keys
//   - Ciphertexts and server keys are not secret but are large; log sizes, not bytes
//   - Use Discard in tests that assert on behaviour rather than output
package logging
