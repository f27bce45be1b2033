package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/rdscript/internal/config"
	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/util"
)

func cmdScratch(args []string) error {
	fs := flag.NewFlagSet("scratch", flag.ExitOnError)
	var (
		fresh     bool
		runAfter  bool
		namespace string
		requests  stringsFlag
	)
	fs.BoolVar(&fresh, "new", false, "create a new scratch file instead of reopening the latest")
	fs.BoolVar(&runAfter, "run", false, "run the scratch file when done editing")
	fs.StringVar(&namespace, "n", "", "namespace to read variables from (with -run)")
	fs.StringVar(&namespace, "namespace", "", "namespace to read variables from (with -run)")
	fs.Var(&requests, "r", "name of a request to run (with -run, repeatable)")
	fs.Var(&requests, "request", "name of a request to run (with -run, repeatable)")
	_ = fs.Parse(args)

	settings, _, err := config.LoadSettings()
	if err != nil {
		return err
	}
	dir := settings.ScratchDir

	if fs.NArg() == 1 && fs.Arg(0) == "history" {
		return scratchHistory(dir)
	}
	if fs.NArg() != 0 {
		return errdef.New(errdef.CodeScript, "usage: rdscript scratch [flags] [history]")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create scratch dir %s", dir)
	}

	var path string
	if !fresh {
		files, err := scratchFiles(dir)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			path = files[len(files)-1]
		}
	}
	if path == "" {
		path = filepath.Join(dir, fmt.Sprintf("scratch-%d.rd", time.Now().UnixMilli()))
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "create scratch file %s", path)
		}
	}

	if err := editFile(path); err != nil {
		return err
	}

	if runAfter {
		sr, err := evaluateScript([]string{path}, namespace)
		if err != nil {
			return err
		}
		return runItems(sr, util.DedupeNonEmptyStrings(requests))
	}
	return nil
}

// scratchHistory lists every scratch file with its first three lines, the
// way a shell history preview would.
func scratchHistory(dir string) error {
	files, err := scratchFiles(dir)
	if err != nil {
		return err
	}

	title := lipgloss.NewStyle().Bold(true)
	preview := lipgloss.NewStyle().Faint(true)
	for _, path := range files {
		fmt.Println(title.Render(path))

		f, err := os.Open(path)
		if err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "open scratch file %s", path)
		}
		scanner := bufio.NewScanner(f)
		for i := 0; i < 3 && scanner.Scan(); i++ {
			fmt.Println(preview.Render(fmt.Sprintf("  %d|  %s", i+1, scanner.Text())))
		}
		_ = f.Close()
	}
	return nil
}

func scratchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read scratch dir %s", dir)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".rd" {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}
