package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

const module = "github.com/fhenixprotocol/go-tfhe"

// checked lists the packages every policy runs over.
var checked = []string{
	module + "/pkg/tfhe",
	module + "/pkg/tfhe/abi",
	module + "/pkg/tfhe/buffer",
	module + "/pkg/tfhe/errchan",
	module + "/pkg/tfhe/logging",
	module + "/pkg/tfhe/oracle",
	module + "/internal/testscheme",
	module + "/cmd/tfhe-go",
}

func load(t *testing.T, mode packages.LoadMode, patterns ...string) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	for _, p := range pkgs {
		for _, e := range p.Errors {
			t.Fatalf("load %s: %v", p.PkgPath, e)
		}
	}
	return pkgs
}
