package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/unkn0wn-root/rdscript/internal/snap"
)

func cmdSnap(args []string) error {
	fs := flag.NewFlagSet("snap", flag.ExitOnError)
	var (
		namespace string
		toClip    bool
	)
	fs.StringVar(&namespace, "n", "", "namespace to read variables from")
	fs.StringVar(&namespace, "namespace", "", "namespace to read variables from")
	fs.BoolVar(&toClip, "copy", false, "copy the snapshot to the clipboard")
	_ = fs.Parse(args)

	sr, err := evaluateScript(fs.Args(), namespace)
	if err != nil {
		return err
	}

	script := snap.Script(sr.items)
	if toClip {
		if err := snap.CopyToClipboard(script); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "copied snapshot to clipboard")
		return nil
	}
	fmt.Print(script)
	return nil
}
