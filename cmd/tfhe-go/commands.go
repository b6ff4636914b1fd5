package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/abi"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/oracle"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display wrapper and backend versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), abi.Version())
		},
	}
}

func keygenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key set under --home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				if err := lib.GenerateKeys(); err != nil {
					return err
				}
				c, s, p := lib.Config().KeyPaths()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "client key: %s\nserver key: %s\npublic key: %s\n", c, s, p)
				return nil
			})
		},
	}
}

func typeFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "type", "t", "uint32", "integer type: uint8, uint16 or uint32")
}

func encryptCmd(opts *options) *cobra.Command {
	var typ string
	var compact bool
	cmd := &cobra.Command{
		Use:   "encrypt VALUE",
		Short: "Encrypt VALUE and print the ciphertext as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tfhe.ParseUintType(typ)
			if err != nil {
				return err
			}
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				ct, err := lib.Engine().NewCiphertext(v, t, compact)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ct.Serialization))
				return nil
			})
		},
	}
	typeFlag(cmd, &typ)
	cmd.Flags().BoolVar(&compact, "compact", false, "emit the compressed form")
	return cmd
}

func decryptCmd(opts *options) *cobra.Command {
	var typ string
	var compact bool
	cmd := &cobra.Command{
		Use:   "decrypt HEX",
		Short: "Decrypt a hex ciphertext",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tfhe.ParseUintType(typ)
			if err != nil {
				return err
			}
			raw, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				v, err := lib.Engine().DecryptCiphertext(&tfhe.Ciphertext{Serialization: raw, Type: t, Compact: compact})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
	typeFlag(cmd, &typ)
	cmd.Flags().BoolVar(&compact, "compact", false, "input is in the compressed form")
	return cmd
}

func mathCmd(opts *options) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "math OP LHS_HEX [RHS_HEX]",
		Short: "Evaluate OP over hex ciphertexts",
		Long: "Evaluate a homomorphic operation. OP is one of add, sub, mul, div, rem, and, or, xor,\n" +
			"shl, shr, min, max, eq, ne, lt, lte, gt, gte, or the unary not.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tfhe.ParseUintType(typ)
			if err != nil {
				return err
			}
			lhs, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				var out []byte
				if strings.EqualFold(args[0], tfhe.Not.String()) {
					if len(args) != 2 {
						return fmt.Errorf("%w: not takes one operand", tfhe.ErrArgument)
					}
					out, err = lib.Engine().UnaryMathOperation(lhs, tfhe.Not, t)
				} else {
					op, perr := tfhe.ParseOp(args[0])
					if perr != nil {
						return perr
					}
					if len(args) != 3 {
						return fmt.Errorf("%w: %s takes two operands", tfhe.ErrArgument, op)
					}
					rhs, herr := decodeHex(args[2])
					if herr != nil {
						return herr
					}
					out, err = lib.Engine().MathOperation(lhs, rhs, op, t)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
				return nil
			})
		},
	}
	typeFlag(cmd, &typ)
	return cmd
}

func publicKeyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "public-key",
		Short: "Print the resident public key as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				pk, err := lib.Keys().PublicKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(pk))
				return nil
			})
		},
	}
}

func sealCmd(opts *options) *cobra.Command {
	var typ, to string
	cmd := &cobra.Command{
		Use:   "seal HEX --to USER_X25519_PUBKEY_HEX",
		Short: "Decrypt a hex ciphertext and seal the value to a user's key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tfhe.ParseUintType(typ)
			if err != nil {
				return err
			}
			raw, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			user, err := decodeHex(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			return opts.withLibrary(cmd, func(lib *tfhe.Library) error {
				o := oracle.NewMemoryOracle(lib.Engine(), oracle.WithLogger(lib.Config().Logger))
				defer o.Close()
				sealed, err := o.SealOutput(&tfhe.Ciphertext{Serialization: raw, Type: t}, user)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sealed)
				return nil
			})
		},
	}
	typeFlag(cmd, &typ)
	cmd.Flags().StringVar(&to, "to", "", "recipient x25519 public key in hex")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex: %w", tfhe.ErrArgument, err)
	}
	return b, nil
}
