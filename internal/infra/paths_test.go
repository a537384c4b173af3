package infra

import (
	"path/filepath"
	"testing"
)

func TestPathsIn_AllFilesInDataDir(t *testing.T) {
	p := PathsIn("/tmp/idlectl-data", "/home/alice")

	for _, path := range []string{p.ConfigPath, p.LockPath, p.SettingsPath, p.LogPath} {
		if filepath.Dir(path) != p.DataDir {
			t.Errorf("%s should be inside %s", path, p.DataDir)
		}
	}
	if filepath.Base(p.ConfigPath) != "config.json" {
		t.Errorf("unexpected config file name %s", p.ConfigPath)
	}
	if p.LegacyConfigPath != "" {
		t.Errorf("an explicit data dir should not import the legacy file, got %s", p.LegacyConfigPath)
	}
}

func TestDefaultPaths_HonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	p := DefaultPaths()
	if p.DataDir != dir {
		t.Errorf("expected data dir %s, got %s", dir, p.DataDir)
	}
}

func TestDefaultPaths_UnderHome(t *testing.T) {
	t.Setenv(EnvHome, "")

	p := DefaultPaths()
	if p.DataDir != filepath.Join(p.HomeDir, ".idlectl") {
		t.Errorf("expected ~/.idlectl, got %s", p.DataDir)
	}
	if p.LegacyConfigPath != filepath.Join(p.HomeDir, ".auto_shutdown_config.json") {
		t.Errorf("unexpected legacy config path %s", p.LegacyConfigPath)
	}
}

func TestExpandHome(t *testing.T) {
	p := PathsIn("/d", "/home/alice")

	tests := map[string]string{
		"~/auto_off.sh":        "/home/alice/auto_off.sh",
		"~":                    "/home/alice",
		"/opt/auto_off.sh":     "/opt/auto_off.sh",
		"relative/auto_off.sh": "relative/auto_off.sh",
	}
	for in, want := range tests {
		if got := p.ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
