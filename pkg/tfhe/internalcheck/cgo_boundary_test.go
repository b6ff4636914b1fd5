package internalcheck

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// cgoAllowed are the only packages that may import "C".
var cgoAllowed = map[string]bool{
	module + "/internal/bindings": true,
	module + "/cmd/libtfhe":       true,
}

func TestCgoConfinedToBoundary(t *testing.T) {
	pkgs := load(t, packages.NeedName|packages.NeedSyntax|packages.NeedFiles, module+"/...")

	var findings []string
	for _, pkg := range pkgs {
		if cgoAllowed[pkg.PkgPath] {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, imp := range file.Imports {
				path, err := strconv.Unquote(imp.Path.Value)
				if err == nil && path == "C" {
					findings = append(findings, pkg.Fset.Position(imp.Pos()).String())
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("import \"C\" outside the native boundary:\n%s", strings.Join(findings, "\n"))
	}
}
