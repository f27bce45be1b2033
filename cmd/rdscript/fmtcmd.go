package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/format"
)

func cmdFmt(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	var (
		check bool
		write bool
	)
	fs.BoolVar(&check, "check", false, "print a diff instead of the result; exit non-zero when not formatted")
	fs.BoolVar(&write, "w", false, "write the result back to the file instead of stdout")
	_ = fs.Parse(args)

	src, path, err := readScript(fs.Args())
	if err != nil {
		return err
	}

	if check {
		name := path
		if name == "" {
			name = "stdin"
		}
		diffText, clean, errs := format.Check(name, src)
		if len(errs) > 0 {
			return renderDiags(errs)
		}
		if clean {
			return nil
		}
		fmt.Print(diffText)
		return errExitSilently
	}

	formatted, errs := format.Script(src)
	if len(errs) > 0 {
		return renderDiags(errs)
	}

	if write {
		if path == "" {
			return errdef.New(errdef.CodeScript, "-w needs a file argument")
		}
		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "write %s", path)
		}
		return nil
	}

	fmt.Print(formatted)
	return nil
}
