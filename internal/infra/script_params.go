package infra

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Shell variables holding the idle limits, in seconds.
const (
	ScriptShutdownVar  = "LIMITE"
	ScriptScreenOffVar = "TELA_LIMITE"
)

// ScriptParams are the two durations stored in the helper script, in minutes.
type ScriptParams struct {
	ShutdownMinutes  int
	ScreenOffMinutes int
}

// ScriptParamStore reads and rewrites the `NAME=<seconds>` lines of a shell script,
// leaving every other line untouched.
type ScriptParamStore struct {
	path string
}

// NewScriptParamStore creates a store for the script at path.
func NewScriptParamStore(path string) *ScriptParamStore {
	return &ScriptParamStore{path: path}
}

// Path returns the script path.
func (s *ScriptParamStore) Path() string {
	return s.path
}

// Load returns the durations found in the script. A variable that is absent reads as 0.
func (s *ScriptParamStore) Load() (ScriptParams, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ScriptParams{}, fmt.Errorf("read script %s: %w", s.path, err)
	}
	return ScriptParams{
		ShutdownMinutes:  readSeconds(data, ScriptShutdownVar) / 60,
		ScreenOffMinutes: readSeconds(data, ScriptScreenOffVar) / 60,
	}, nil
}

// Save rewrites both variables in place, appending any that are missing.
func (s *ScriptParamStore) Save(p ScriptParams) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat script %s: %w", s.path, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read script %s: %w", s.path, err)
	}

	data = writeSeconds(data, ScriptShutdownVar, p.ShutdownMinutes*60)
	data = writeSeconds(data, ScriptScreenOffVar, p.ScreenOffMinutes*60)

	// Keep the executable bit.
	if err := atomicWriteFile(s.path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write script %s: %w", s.path, err)
	}
	return nil
}

func varPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `=(\d+)[ \t]*$`)
}

func readSeconds(data []byte, name string) int {
	m := varPattern(name).FindSubmatch(data)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return n
}

func writeSeconds(data []byte, name string, seconds int) []byte {
	line := []byte(name + "=" + strconv.Itoa(seconds))
	re := varPattern(name)
	if re.Match(data) {
		return re.ReplaceAllLiteral(data, line)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return append(append(data, line...), '\n')
}
