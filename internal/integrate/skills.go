package integrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.yaml.in/yaml/v3"

	"github.com/apm-labs/apm/internal/fetch"
	"github.com/apm-labs/apm/internal/project"
)

// InstallSkills copies every skill of an installed package verbatim into
// the project's skill roots: .github/skills/<name>/SKILL.md always, and
// .claude/skills/<name>/SKILL.md when the project carries a .claude/
// directory. Skills bypass the suffix scheme and are written at install
// time, not per sync pass.
func (s *Synchronizer) InstallSkills(projectRoot, pkgDir string) (installed int, errs int) {
	roots := []string{project.GitHubSkillsDir(projectRoot)}
	if project.HasClaudeDir(projectRoot) {
		roots = append(roots, project.ClaudeSkillsDir(projectRoot))
	}

	for _, skillDir := range s.findSkillDirs(pkgDir) {
		src := filepath.Join(skillDir, "SKILL.md")
		data, err := os.ReadFile(src)
		if err != nil {
			s.logger.Warn("reading skill failed", "path", src, "error", err)
			errs++
			continue
		}

		name := ToHyphenCase(filepath.Base(skillDir))
		if name == "" {
			s.logger.Warn("skill directory has no usable name", "path", skillDir)
			errs++
			continue
		}

		ok := true
		for _, root := range roots {
			dest := filepath.Join(root, name)
			if err := project.EnsureDir(dest); err != nil {
				s.logger.Warn("creating skill directory failed", "dir", dest, "error", err)
				errs++
				ok = false
				continue
			}
			if err := os.WriteFile(filepath.Join(dest, "SKILL.md"), data, project.FilePerm); err != nil {
				s.logger.Warn("writing skill failed", "dir", dest, "error", err)
				errs++
				ok = false
			}
		}
		if ok {
			installed++
		}
	}
	return installed, errs
}

// findSkillDirs lists a package's skill directories: any directory under
// .apm/skills or skills that carries a SKILL.md.
func (s *Synchronizer) findSkillDirs(pkgDir string) []string {
	var out []string
	for _, root := range []string{
		filepath.Join(pkgDir, ".apm", "skills"),
		filepath.Join(pkgDir, "skills"),
	} {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, e.Name(), "SKILL.md")); err == nil {
				out = append(out, filepath.Join(root, e.Name()))
			}
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

// skillMeta is the frontmatter of the legacy skill-to-agent transform.
type skillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	APM         struct {
		SourceType       string `yaml:"source_type"`
		SourceDependency string `yaml:"source_dependency"`
		ContentHash      string `yaml:"content_hash"`
	} `yaml:"apm"`
}

// SkillToAgent converts a skill document into an agent-shaped document:
// frontmatter with name, description, and an apm provenance block, then
// the skill body with its own leading frontmatter stripped. Retained for
// compatibility; the primary skill flow copies SKILL.md verbatim.
func SkillToAgent(skillName, sourceDependency string, content []byte) ([]byte, error) {
	fm, body := fetch.SplitFrontmatter(content)

	description := ""
	if fm != nil {
		var meta struct {
			Description string `yaml:"description"`
		}
		if err := yaml.Unmarshal(fm, &meta); err == nil {
			description = strings.TrimSpace(meta.Description)
		}
	}

	var meta skillMeta
	meta.Name = ToHyphenCase(skillName)
	meta.Description = description
	meta.APM.SourceType = "skill"
	meta.APM.SourceDependency = sourceDependency
	meta.APM.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64(content))

	head, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling agent frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.Write(body)
	return []byte(b.String()), nil
}
