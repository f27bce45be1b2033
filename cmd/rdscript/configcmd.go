package main

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/unkn0wn-root/rdscript/internal/config"
	"github.com/unkn0wn-root/rdscript/internal/errdef"
)

func cmdConfig(args []string) error {
	settings, handle, err := config.LoadSettings()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		data, err := toml.Marshal(settings)
		if err != nil {
			return errdef.Wrap(errdef.CodeScript, err, "encode settings")
		}
		fmt.Print(string(data))
		return nil
	case "path":
		fmt.Println(handle.Path)
		return nil
	case "scratch-dir":
		return configScratchDir(settings, handle, args[1:])
	default:
		return errdef.New(errdef.CodeScript,
			"unknown config command %q, expected show, path or scratch-dir", args[0])
	}
}

func configScratchDir(settings config.Settings, handle config.SettingsHandle, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		fmt.Println(settings.ScratchDir)
		return nil
	}
	if args[0] != "set" || len(args) != 2 {
		return errdef.New(errdef.CodeScript, "usage: rdscript config scratch-dir [show|set <path>]")
	}

	dir := args[1]
	info, err := os.Stat(dir)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "stat %s", dir)
	}
	if !info.IsDir() {
		return errdef.New(errdef.CodeFilesystem, "%s is not a directory", dir)
	}

	settings.ScratchDir = dir
	return config.SaveSettings(settings, handle)
}
