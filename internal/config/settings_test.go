package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsReturnsDefaultHandleWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envConfigDir, dir)

	settings, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	expectedPath := filepath.Join(dir, "settings.toml")
	if handle.Path != expectedPath {
		t.Fatalf("expected handle path %q, got %q", expectedPath, handle.Path)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q, got %q", SettingsFormatTOML, handle.Format)
	}
	if settings.ScratchDir == "" {
		t.Fatalf("expected scratch dir default, got empty")
	}
	if settings.History.MaxEntries != 200 {
		t.Fatalf("expected default history cap, got %d", settings.History.MaxEntries)
	}
	if settings.History.Path != filepath.Join(dir, "history.json") {
		t.Fatalf("unexpected history path %q", settings.History.Path)
	}
}

func TestSaveAndLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envConfigDir, dir)

	want := Settings{
		ScratchDir: filepath.Join(dir, "scratch"),
		HTTP:       HTTPSettings{TimeoutSeconds: 15, FollowRedirects: true},
	}
	if err := SaveSettings(want, SettingsHandle{}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.ScratchDir != want.ScratchDir {
		t.Fatalf("expected scratch dir %q, got %q", want.ScratchDir, got.ScratchDir)
	}
	if got.HTTP.TimeoutSeconds != 15 || !got.HTTP.FollowRedirects {
		t.Fatalf("unexpected http settings: %#v", got.HTTP)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q after save, got %q", SettingsFormatTOML, handle.Format)
	}
}

func TestLoadSettingsJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envConfigDir, dir)

	payload := Settings{ScratchDir: filepath.Join(dir, "elsewhere")}
	data, err := json.MarshalIndent(NormaliseSettings(payload), "", "  ")
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write json settings: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.ScratchDir != payload.ScratchDir {
		t.Fatalf("expected scratch dir %q, got %q", payload.ScratchDir, got.ScratchDir)
	}
	if handle.Format != SettingsFormatJSON {
		t.Fatalf("expected json format, got %q", handle.Format)
	}
	if handle.Path != path {
		t.Fatalf("expected handle path %q, got %q", path, handle.Path)
	}
}

func TestNormaliseSettingsClampsNumbers(t *testing.T) {
	got := NormaliseSettings(Settings{
		HTTP:    HTTPSettings{TimeoutSeconds: -5},
		History: HistorySettings{MaxEntries: -1},
	})
	if got.HTTP.TimeoutSeconds != 0 {
		t.Fatalf("timeout: %d", got.HTTP.TimeoutSeconds)
	}
	if got.History.MaxEntries != 200 {
		t.Fatalf("max entries: %d", got.History.MaxEntries)
	}
}
