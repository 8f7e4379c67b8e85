package scaffold

import (
	"errors"

	huh "github.com/charmbracelet/huh"
)

// Flow collects Answers interactively via a huh form.
type Flow struct{}

func NewFlow() *Flow {
	return &Flow{}
}

// Run prompts for a project name, compiler, and default profile. It
// returns a nil Answers (and nil error) if the user aborts the form.
func (f *Flow) Run(defaultName string) (*Answers, error) {
	answers := Answers{Name: defaultName, Compiler: "cc", Profile: "debug"}

	compilerOpts := []huh.Option[string]{
		huh.NewOption("cc (system C compiler)", "cc"),
		huh.NewOption("gcc", "gcc"),
		huh.NewOption("clang", "clang"),
		huh.NewOption("g++", "g++"),
		huh.NewOption("clang++", "clang++"),
	}
	profileOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("release", "release"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&answers.Name).
				Validate(func(v string) error {
					if v == "" {
						return errors.New("project name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Compiler").
				Options(compilerOpts...).
				Value(&answers.Compiler),
			huh.NewSelect[string]().
				Title("Default profile").
				Options(profileOpts...).
				Value(&answers.Profile),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return &answers, nil
}
