//go:build tfhe_testscheme

package main

import (
	"github.com/fhenixprotocol/go-tfhe/internal/testscheme"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe"
	"github.com/fhenixprotocol/go-tfhe/pkg/tfhe/abi"
)

const insecureBackend = true

func backend() tfhe.Scheme { return testscheme.New() }

func version() string { return abi.Version() + " testscheme-INSECURE" }
