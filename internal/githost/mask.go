package githost

import (
	"fmt"
	"regexp"
)

var (
	// https://<credential>@<host> — credentials embedded as URL userinfo.
	tokenURLRe = regexp.MustCompile(`https://[^@\s]+@`)
	// Classic GitHub PAT prefixes appearing as standalone values.
	patRe = regexp.MustCompile(`(ghp_|gho_|ghu_|ghs_|ghr_)[a-zA-Z0-9_]+`)
	// VAR=value assignments for known token variables.
	tokenEnvRe = regexp.MustCompile(`(GITHUB_TOKEN|GITHUB_APM_PAT|GH_TOKEN)=\S+`)
)

// MaskToken replaces every credential-bearing URL userinfo, classic PAT
// value, and token env assignment in message with masked placeholders.
// Every surfaced error or log line that may contain a clone URL must pass
// through here before reaching an output sink.
func MaskToken(message string) string {
	masked := tokenURLRe.ReplaceAllString(message, "https://***@")
	masked = patRe.ReplaceAllString(masked, "***")
	masked = tokenEnvRe.ReplaceAllString(masked, "$1=***")
	return masked
}

// MaskTokenForHost masks credential-bearing URLs for a specific host only,
// leaving other URLs untouched.
func MaskTokenForHost(message, host string) string {
	re := regexp.MustCompile(`https://[^@\s]+@` + regexp.QuoteMeta(host))
	return re.ReplaceAllString(message, fmt.Sprintf("https://***@%s", host))
}
