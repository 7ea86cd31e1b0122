package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureGitignore makes sure the project's .gitignore excludes the
// package install root. An existing entry (with or without trailing
// slash) is left alone; a missing .gitignore is created.
func EnsureGitignore(root string) error {
	path := filepath.Join(root, GitignoreFile)
	entry := ModulesDir + "/"

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == entry || line == ModulesDir {
			return nil
		}
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(path, []byte(content), FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
