// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

const fakeHelperScript = `#!/bin/sh
echo "$@" > %q
while :; do sleep 1; done
`

// FakeHelper is an executable script standing in for xautolock or xidlehook.
// It records its arguments and idles until terminated.
type FakeHelper struct {
	Path     string
	ArgsFile string
}

// NewFakeHelper writes an executable helper script named name into dir.
func NewFakeHelper(dir, name string) (*FakeHelper, error) {
	f := &FakeHelper{
		Path:     filepath.Join(dir, name),
		ArgsFile: filepath.Join(dir, name+".args"),
	}
	script := fmt.Sprintf(fakeHelperScript, f.ArgsFile)
	if err := os.WriteFile(f.Path, []byte(script), 0755); err != nil {
		return nil, err
	}
	return f, nil
}

// Spec returns a helper spec that launches the script with the duration in minutes
// and recognizes it by its path on the command line.
func (f *FakeHelper) Spec() domain.HelperSpec {
	return domain.HelperSpec{
		Kind:         domain.HelperProcess,
		Command:      []string{f.Path, "--idle", "{minutes}"},
		MatchCmdline: []string{f.Path},
	}
}

// RecordedArgs returns the arguments of the most recent start, or "" before any.
func (f *FakeHelper) RecordedArgs() string {
	data, err := os.ReadFile(f.ArgsFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
