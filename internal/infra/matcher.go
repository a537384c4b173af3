package infra

import (
	"strings"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// NameMatcher matches the executable name exactly, like pgrep -x.
type NameMatcher struct {
	Name string
}

func (m NameMatcher) Matches(p domain.ProcessDescriptor) bool {
	return p.Name == m.Name
}

func (m NameMatcher) String() string {
	return "name=" + m.Name
}

// CmdlineMatcher matches when every substring occurs in the command line.
type CmdlineMatcher struct {
	Substrings []string
}

func (m CmdlineMatcher) Matches(p domain.ProcessDescriptor) bool {
	if len(m.Substrings) == 0 || p.Cmdline == "" {
		return false
	}
	for _, s := range m.Substrings {
		if !strings.Contains(p.Cmdline, s) {
			return false
		}
	}
	return true
}

func (m CmdlineMatcher) String() string {
	return "cmdline~" + strings.Join(m.Substrings, "&")
}

// AllOf matches when every inner matcher does.
type AllOf []domain.IdentityMatcher

func (m AllOf) Matches(p domain.ProcessDescriptor) bool {
	if len(m) == 0 {
		return false
	}
	for _, inner := range m {
		if !inner.Matches(p) {
			return false
		}
	}
	return true
}

func (m AllOf) String() string {
	parts := make([]string, len(m))
	for i, inner := range m {
		parts[i] = inner.String()
	}
	return strings.Join(parts, ",")
}

// MatcherFromSpec builds the identity matcher for a helper. Without an explicit
// match rule it falls back to the base name of the command's binary.
func MatcherFromSpec(spec domain.HelperSpec) domain.IdentityMatcher {
	var ms AllOf
	if spec.MatchName != "" {
		ms = append(ms, NameMatcher{Name: spec.MatchName})
	}
	if len(spec.MatchCmdline) > 0 {
		ms = append(ms, CmdlineMatcher{Substrings: spec.MatchCmdline})
	}
	if len(ms) == 0 && len(spec.Command) > 0 {
		bin := spec.Command[0]
		if i := strings.LastIndex(bin, "/"); i >= 0 {
			bin = bin[i+1:]
		}
		ms = append(ms, NameMatcher{Name: bin})
	}
	if len(ms) == 1 {
		return ms[0]
	}
	return ms
}
