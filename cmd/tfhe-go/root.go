package main

import (
	"errors"
	"fmt"
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fhenixprotocol/go-tfhe/internal/testscheme"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/logging"
)

type options struct {
	home     string
	scheme   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tfhe-go",
		Short:         "Homomorphic integer engine over tfhe-rs",
		Version:       tfhe.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.home, "home", ".", "directory holding keys/tfhe/{cks,sks,pks}")
	root.PersistentFlags().StringVar(&opts.scheme, "scheme", "native", "backend: native or test (insecure)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		versionCmd(),
		keygenCmd(opts),
		encryptCmd(opts),
		decryptCmd(opts),
		mathCmd(opts),
		publicKeyCmd(opts),
		sealCmd(opts),
	)
	return root
}

func (o *options) logger(cmd *cobra.Command) (logging.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return logging.New(slog.New(h)), nil
}

func (o *options) backend() (tfhe.Scheme, error) {
	switch o.scheme {
	case "native":
		return tfhe.NativeScheme(), nil
	case "test":
		return testscheme.New(), nil
	}
	return nil, fmt.Errorf("--scheme: unknown backend %q", o.scheme)
}

func (o *options) open(cmd *cobra.Command) (*tfhe.Library, error) {
	log, err := o.logger(cmd)
	if err != nil {
		return nil, err
	}
	scheme, err := o.backend()
	if err != nil {
		return nil, err
	}
	if o.scheme == "test" {
		log.Warn(context.Background(), "using the insecure test scheme; ciphertexts carry plaintext")
	}
	cfg := tfhe.DefaultConfig(o.home)
	cfg.Scheme = scheme
	cfg.Logger = log
	cfg.EnableZeroization = true

	lib, err := tfhe.Open(cfg)
	if err != nil {
		if errors.Is(err, tfhe.ErrCGONotEnabled) || errors.Is(err, tfhe.ErrNotBuilt) {
			return nil, fmt.Errorf("native backend unavailable (try --scheme test): %w", err)
		}
		return nil, err
	}
	return lib, nil
}

// withLibrary opens the library for the duration of fn.
func (o *options) withLibrary(cmd *cobra.Command, fn func(*tfhe.Library) error) error {
	lib, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lib.Close(); cerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close error: %v\n", cerr)
		}
	}()
	return fn(lib)
}
