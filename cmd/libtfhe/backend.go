//go:build !tfhe_testscheme

package main

import (
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/abi"
)

const insecureBackend = false

func backend() tfhe.Scheme { return tfhe.NativeScheme() }

func version() string { return abi.Version() }
