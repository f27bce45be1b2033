package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/vars"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var usage = heredoc.Doc(`
	rdscript runs, formats and inspects .rd request scripts.

	Usage:
	  rdscript <command> [flags] [arguments]

	Commands:
	  run       run a script from a file argument or stdin
	  check     parse and evaluate a script without sending anything
	  fmt       format a script
	  snap      render the evaluated requests as a curl script
	  env       manage the variables file (.env.rd.json)
	  scratch   edit a scratch script in $EDITOR
	  import    generate a script from an OpenAPI 3 document
	  history   list past runs
	  config    view or change tool settings
	  version   print version information

	Run "rdscript <command> -h" for the command's flags.
`)

// errExitSilently signals a failure that was already reported, usually as
// rendered diagnostics.
var errExitSilently = errors.New("exit")

func main() {
	log.SetFlags(0)
	log.SetPrefix("rdscript: ")

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "run":
		err = cmdRun(rest)
	case "check":
		err = cmdCheck(rest)
	case "fmt":
		err = cmdFmt(rest)
	case "snap":
		err = cmdSnap(rest)
	case "env":
		err = cmdEnv(rest)
	case "scratch":
		err = cmdScratch(rest)
	case "import":
		err = cmdImport(rest)
	case "history":
		err = cmdHistory(rest)
	case "config":
		err = cmdConfig(rest)
	case "version", "--version", "-version":
		printVersion()
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, errExitSilently) {
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func printVersion() {
	fmt.Printf("rdscript %s\n", version)
	fmt.Printf("  commit: %s\n", commit)
	fmt.Printf("  built:  %s\n", date)
	if sum, err := executableChecksum(); err == nil {
		fmt.Printf("  sha256: %s\n", sum)
	}
}

func executableChecksum() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	f, err := os.Open(exe)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func colorEnabled() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}

func diagStyles() diag.Styles {
	if colorEnabled() {
		return diag.DefaultStyles()
	}
	return diag.PlainStyles()
}

func renderDiags(errs []*diag.ContextualError) error {
	st := diagStyles()
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, diag.Render(e, st))
	}
	return errExitSilently
}

// readScript reads the script from the single path argument, or stdin when
// no argument (or "-") is given. The returned path is absolute, empty for
// stdin.
func readScript(args []string) (src, path string, err error) {
	if len(args) > 1 {
		return "", "", errdef.New(errdef.CodeScript, "expected at most one script path, got %d", len(args))
	}

	if len(args) == 1 && args[0] != "-" {
		path = args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", errdef.Wrap(errdef.CodeFilesystem, err, "read script %s", path)
		}
		if abs, aerr := filepath.Abs(path); aerr == nil {
			path = abs
		}
		return string(data), path, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", errdef.Wrap(errdef.CodeFilesystem, err, "read stdin")
	}
	return string(data), "", nil
}

// openStoreNear picks the variables file next to the script, falling back
// to the home directory. Scripts from stdin always use the home file.
func openStoreNear(scriptPath string) (*vars.Store, error) {
	dir := ""
	if scriptPath != "" {
		dir = filepath.Dir(scriptPath)
	}
	return vars.OpenNearest(dir)
}
