package integrate

import (
	"regexp"
	"strings"
)

// Generated-file suffixes. The suffix is the sole discriminator between
// system-managed and user-authored files sharing an output directory.
const (
	PromptSuffix      = "-apm.prompt.md"
	AgentSuffix       = "-apm.agent.md"
	ClaudeAgentSuffix = "-apm.md"
)

var (
	camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	invalidCharsRe  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunsRe    = regexp.MustCompile(`-{2,}`)
)

// ToHyphenCase normalizes a name for generated-file and skill-directory
// use: camelCase boundaries become hyphens, underscores and spaces become
// hyphens, everything outside [a-z0-9-] is stripped, hyphen runs
// collapse, and leading/trailing hyphens are trimmed.
func ToHyphenCase(name string) string {
	s := camelBoundaryRe.ReplaceAllString(name, "$1-$2")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	s = invalidCharsRe.ReplaceAllString(s, "")
	s = hyphenRunsRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
