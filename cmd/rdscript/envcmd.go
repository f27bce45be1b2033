package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/vars"
)

func cmdEnv(args []string) error {
	fs := flag.NewFlagSet("env", flag.ExitOnError)
	var cwd bool
	fs.BoolVar(&cwd, "cwd", false, "operate on the variables file in the current directory instead of home")
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"show"}
	}

	store, err := openEnvStore(cwd)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "show":
		data, err := renderStore(store)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "edit":
		return editFile(store.Path())
	case "set":
		return envSet(store, rest[1:])
	case "ns":
		return envNamespace(store, rest[1:])
	case "import":
		return envImport(store, rest[1:])
	default:
		return errdef.New(errdef.CodeScript,
			"unknown env command %q, expected show, edit, set, ns or import", rest[0])
	}
}

func envSet(store *vars.Store, args []string) error {
	fs := flag.NewFlagSet("env set", flag.ExitOnError)
	var namespace string
	fs.StringVar(&namespace, "n", "", "namespace to set the variable in")
	fs.StringVar(&namespace, "namespace", "", "namespace to set the variable in")
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		return errdef.New(errdef.CodeScript, "usage: rdscript env set [-n namespace] <name> <value>")
	}
	if namespace != "" {
		store.SelectNamespace(namespace)
	}
	log.Printf("setting variable %q in namespace %q", fs.Arg(0), store.Selected())
	return store.Set(fs.Arg(0), fs.Arg(1))
}

func envNamespace(store *vars.Store, args []string) error {
	if len(args) != 2 {
		return errdef.New(errdef.CodeScript, "usage: rdscript env ns <add|rm> <name>")
	}
	switch args[0] {
	case "add":
		log.Printf("adding namespace %q", args[1])
		return store.AddNamespace(args[1])
	case "rm":
		log.Printf("removing namespace %q", args[1])
		return store.RemoveNamespace(args[1])
	default:
		return errdef.New(errdef.CodeScript, "unknown ns command %q, expected add or rm", args[0])
	}
}

func envImport(store *vars.Store, args []string) error {
	fs := flag.NewFlagSet("env import", flag.ExitOnError)
	var namespace string
	fs.StringVar(&namespace, "n", "", "namespace to import the variables into")
	fs.StringVar(&namespace, "namespace", "", "namespace to import the variables into")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errdef.New(errdef.CodeScript, "usage: rdscript env import [-n namespace] <file>")
	}
	return store.ImportFile(fs.Arg(0), namespace)
}

func openEnvStore(cwd bool) (*vars.Store, error) {
	if cwd {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "resolve working directory")
		}
		return vars.Open(filepath.Join(wd, vars.FileName))
	}
	path, err := vars.HomePath()
	if err != nil {
		return nil, err
	}
	return vars.Open(path)
}

// renderStore prints the store in its on-disk shape, which also works when
// the file does not exist yet.
func renderStore(store *vars.Store) ([]byte, error) {
	out := map[string]map[string]string{}
	for _, namespace := range store.Namespaces() {
		out[namespace] = store.Values(namespace)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeScript, err, "encode variables")
	}
	return data, nil
}

func editFile(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return errdef.New(errdef.CodeScript, "$EDITOR is not set")
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "run editor %s", editor)
	}
	return nil
}
