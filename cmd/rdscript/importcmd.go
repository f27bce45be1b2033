package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/openapi"
)

// cmdImport turns an OpenAPI document into a script with one request per
// operation.
func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	var (
		out         string
		deprecated  bool
		serverIndex int
	)
	fs.StringVar(&out, "o", "", "output file (default: spec name with a .rd extension, - for stdout)")
	fs.BoolVar(&deprecated, "include-deprecated", false, "also generate requests for deprecated operations")
	fs.IntVar(&serverIndex, "server-index", 0, "which server entry to use for the base URL")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errdef.New(errdef.CodeScript, "usage: rdscript import [flags] <openapi file>")
	}
	spec := fs.Arg(0)

	script, err := openapi.GenerateFromFile(spec, openapi.Options{
		IncludeDeprecated:    deprecated,
		PreferredServerIndex: serverIndex,
	})
	if err != nil {
		return err
	}

	if out == "-" {
		fmt.Print(script)
		return nil
	}
	if out == "" {
		out = strings.TrimSuffix(spec, filepath.Ext(spec)) + ".rd"
	}
	if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write %s", out)
	}
	fmt.Fprintf(os.Stderr, "generated %s from %s\n", out, spec)
	return nil
}
