package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/unkn0wn-root/rdscript/internal/config"
	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/history"
)

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	var (
		request string
		script  string
		limit   int
	)
	fs.StringVar(&request, "r", "", "only entries for this request name or URL")
	fs.StringVar(&request, "request", "", "only entries for this request name or URL")
	fs.StringVar(&script, "script", "", "only entries recorded for this script file")
	fs.IntVar(&limit, "limit", 20, "maximum number of entries to print")
	_ = fs.Parse(args)

	if request != "" && script != "" {
		return errdef.New(errdef.CodeScript, "-r and -script are mutually exclusive")
	}

	settings, _, err := config.LoadSettings()
	if err != nil {
		return err
	}

	store := history.NewStore(settings.History.Path, settings.History.MaxEntries)
	if err := store.Load(); err != nil {
		return err
	}

	var entries []history.Entry
	switch {
	case request != "":
		entries = store.ByRequest(request)
	case script != "":
		entries = store.ByScript(script)
	default:
		entries = store.Entries()
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	for _, entry := range entries {
		status := "ok"
		if !entry.OK {
			status = "failed"
		}
		name := entry.RequestName
		if name == "" {
			name = "-"
		}
		fmt.Printf("%s  %-6s %-7s %s %s\n",
			entry.ExecutedAt.Format(time.RFC3339), entry.Method, status, name, entry.URL)
		if entry.Error != "" {
			fmt.Printf("    %s\n", entry.Error)
		}
	}
	return nil
}
