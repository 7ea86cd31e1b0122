package githost

import (
	"fmt"
	"strings"
)

// UnsupportedHostError is returned when a host matches no known platform
// family and is not the configured override host. Its message names the
// rejected host, the accepted patterns, and how to configure an override.
type UnsupportedHostError struct {
	Host     string
	Override string
}

func (e *UnsupportedHostError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unsupported git host %q", e.Host)
	if e.Override != "" && !strings.EqualFold(e.Override, e.Host) {
		fmt.Fprintf(&b, " (configured override host is %q)", e.Override)
	}
	b.WriteString("\nsupported hosts:\n")
	b.WriteString("  - github.com\n")
	b.WriteString("  - *.ghe.com (GitHub Enterprise Cloud)\n")
	b.WriteString("  - dev.azure.com, *.visualstudio.com (Azure DevOps)\n")
	b.WriteString("  - any valid FQDN configured via GITHUB_HOST\n")
	b.WriteString("to use a custom host, set the override:\n")
	fmt.Fprintf(&b, "  export GITHUB_HOST=%s            # bash/zsh\n", e.Host)
	fmt.Fprintf(&b, "  $env:GITHUB_HOST = \"%s\"          # PowerShell\n", e.Host)
	fmt.Fprintf(&b, "  set GITHUB_HOST=%s               # cmd.exe", e.Host)
	return b.String()
}
