package scan

import (
	"os"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
)

// ignoreMatcher is the minimal surface scan needs from a loaded ignore
// file, kept separate from gitignore.GitIgnore so a nil matcher (no
// .forgeignore present) is trivially safe to consult.
type ignoreMatcher interface {
	Match(path string) bool
}

type gitignoreMatcher struct {
	gi   gitignore.GitIgnore
	base string
}

func (m *gitignoreMatcher) Match(path string) bool {
	rel, err := filepath.Rel(m.base, path)
	if err != nil {
		return false
	}
	match := m.gi.Relative(rel, false)
	return match != nil && match.Ignore()
}

// loadIgnore loads an optional .forgeignore file from each source root and
// returns a combined matcher. Absence of any .forgeignore files returns a
// nil matcher, leaving scan's base behavior ("extension in the recognized
// set is a source") unchanged — see SPEC_FULL.md §4.2's Scanner
// supplement.
func loadIgnore(memberRoot string, srcRoots []string) (ignoreMatcher, error) {
	var matchers multiMatcher
	for _, root := range srcRoots {
		abs := root
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(memberRoot, root)
		}
		path := filepath.Join(abs, ".forgeignore")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		gi := gitignore.New(f, abs, nil)
		f.Close()
		matchers = append(matchers, &gitignoreMatcher{gi: gi, base: abs})
	}
	if len(matchers) == 0 {
		return nil, nil
	}
	return matchers, nil
}

type multiMatcher []ignoreMatcher

func (m multiMatcher) Match(path string) bool {
	for _, sub := range m {
		if sub.Match(path) {
			return true
		}
	}
	return false
}
