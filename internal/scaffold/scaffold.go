// Package scaffold generates a new forge project on disk: a forge.toml
// and a starter source file, rendered from embedded templates. It is
// the "project scaffolding" external collaborator spec.md §1 names.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Answers is the set of choices a "forge new" flow collects, whether
// interactively via huh or from flags in a non-interactive context.
type Answers struct {
	Name     string
	Compiler string
	Profile  string
}

func (a Answers) isCPP() bool {
	c := strings.ToLower(a.Compiler)
	return strings.Contains(c, "++") || strings.Contains(c, "clang++")
}

// WriteProject renders forge.toml and a starter source file into dir,
// which must not already contain a forge.toml.
func WriteProject(dir string, answers Answers) ([]string, error) {
	if answers.Name == "" {
		return nil, fmt.Errorf("scaffold: project name is required")
	}
	if answers.Compiler == "" {
		answers.Compiler = "cc"
	}
	if answers.Profile == "" {
		answers.Profile = "debug"
	}

	tomlPath := filepath.Join(dir, "forge.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return nil, fmt.Errorf("scaffold: %s already exists", tomlPath)
	}

	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, err
	}

	srcName, srcTmpl := "main.c", "main.c.tmpl"
	if answers.isCPP() {
		srcName, srcTmpl = "main.cpp", "main.cpp.tmpl"
	}
	srcPath := filepath.Join(srcDir, srcName)

	var written []string
	if err := renderTemplate("forge.toml.tmpl", tomlPath, answers); err != nil {
		return nil, err
	}
	written = append(written, tomlPath)

	if err := renderTemplate(srcTmpl, srcPath, answers); err != nil {
		return nil, err
	}
	written = append(written, srcPath)

	return written, nil
}

func renderTemplate(name, dest string, answers Answers) error {
	tmpl, err := template.ParseFS(templates, "templates/"+name)
	if err != nil {
		return fmt.Errorf("scaffold: parse %s: %w", name, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("scaffold: create %s: %w", dest, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, answers); err != nil {
		return fmt.Errorf("scaffold: render %s: %w", name, err)
	}
	return nil
}
