package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/config"
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/eval"
	"github.com/unkn0wn-root/rdscript/internal/history"
	"github.com/unkn0wn-root/rdscript/internal/langsvc"
	"github.com/unkn0wn-root/rdscript/internal/parser"
	"github.com/unkn0wn-root/rdscript/internal/runner"
	"github.com/unkn0wn-root/rdscript/internal/telemetry"
	"github.com/unkn0wn-root/rdscript/internal/util"
	"github.com/unkn0wn-root/rdscript/internal/vars"
)

type stringsFlag []string

func (f *stringsFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *stringsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

// scriptRun is a parsed and evaluated script plus the context it resolved
// against.
type scriptRun struct {
	prog  *ast.Program
	items []eval.RequestItem
	store *vars.Store
	path  string
}

// evaluateScript runs the full front half of the pipeline. Parse and eval
// errors are rendered to stderr and come back as errExitSilently.
func evaluateScript(args []string, namespace string) (*scriptRun, error) {
	src, path, err := readScript(args)
	if err != nil {
		return nil, err
	}

	prog := parser.Parse(src)
	if errs := prog.Errors(); len(errs) > 0 {
		return nil, renderDiags(errs)
	}

	store, err := openStoreNear(path)
	if err != nil {
		return nil, err
	}
	if namespace != "" {
		store.SelectNamespace(namespace)
	}

	var opts []eval.Option
	if path != "" {
		opts = append(opts, eval.WithBaseDir(filepath.Dir(path)))
	}
	items, evalErrs := eval.Evaluate(prog, store, opts...)
	if len(evalErrs) > 0 {
		return nil, renderDiags(evalErrs)
	}

	return &scriptRun{prog: prog, items: items, store: store, path: path}, nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		namespace string
		requests  stringsFlag
	)
	fs.StringVar(&namespace, "n", "", "namespace to read variables from")
	fs.StringVar(&namespace, "namespace", "", "namespace to read variables from")
	fs.Var(&requests, "r", "name of a request to run (repeatable)")
	fs.Var(&requests, "request", "name of a request to run (repeatable)")
	_ = fs.Parse(args)

	sr, err := evaluateScript(fs.Args(), namespace)
	if err != nil {
		return err
	}
	return runItems(sr, util.DedupeNonEmptyStrings(requests))
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var namespace string
	fs.StringVar(&namespace, "n", "", "namespace to read variables from")
	fs.StringVar(&namespace, "namespace", "", "namespace to read variables from")
	_ = fs.Parse(args)

	sr, err := evaluateScript(fs.Args(), namespace)
	if err != nil {
		return err
	}
	for _, warning := range langsvc.Warnings(sr.prog, sr.store) {
		log.Printf("warning (line %d): %s", warning.Span.Start.Line+1, warning.Message)
	}
	fmt.Printf("ok: %d request(s)\n", len(sr.items))
	return nil
}

func runItems(sr *scriptRun, names []string) error {
	settings, _, err := config.LoadSettings()
	if err != nil {
		log.Printf("settings: %v", err)
		settings = config.NormaliseSettings(config.Settings{})
	}

	strategy, err := runner.NewHTTPStrategy(runner.Options{
		Timeout:            time.Duration(settings.HTTP.TimeoutSeconds) * time.Second,
		FollowRedirects:    settings.HTTP.FollowRedirects,
		InsecureSkipVerify: settings.HTTP.Insecure,
		ProxyURL:           settings.HTTP.ProxyURL,
	})
	if err != nil {
		return err
	}
	colored := colorEnabled()
	strategy.SetColor(colored)

	telemetryCfg := telemetry.ConfigFromEnv(os.Getenv)
	telemetryCfg.Version = version
	if telemetryCfg.Enabled() {
		instr, terr := telemetry.New(telemetryCfg)
		if terr != nil {
			log.Printf("telemetry init: %v", terr)
		} else {
			strategy.SetTelemetry(instr)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := instr.Shutdown(ctx); err != nil {
					log.Printf("telemetry shutdown: %v", err)
				}
			}()
		}
	}

	hist := history.NewStore(settings.History.Path, settings.History.MaxEntries)
	if err := hist.Load(); err != nil {
		log.Printf("history: %v", err)
	}

	r := runner.New(strategy,
		runner.WithColor(colored),
		runner.WithHistory(hist, sr.store.Selected(), sr.path),
	)
	if err := r.Run(context.Background(), sr.items, names); err != nil {
		var runErr *runner.RunError
		if errors.As(err, &runErr) {
			return renderDiags([]*diag.ContextualError{
				diag.New(runErr.Err, runErr.Span, sr.prog.Source),
			})
		}
		return err
	}
	return nil
}
