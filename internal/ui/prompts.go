package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
)

// ErrNonInteractive is returned by prompts when prompting is disabled.
var ErrNonInteractive = errors.New("input required but running non-interactively")

func (u *UI) ask(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	if u.nonInteractive {
		return ErrNonInteractive
	}
	return survey.AskOne(p, response, opts...)
}

// PromptYesNo prompts the user for a yes/no answer
func (u *UI) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	var result bool
	p := &survey.Confirm{
		Message: prompt,
		Default: defaultYes,
	}

	err := u.ask(p, &result)
	return result, err
}

// PromptInput prompts the user for text input
func (u *UI) PromptInput(prompt, defaultValue string) (string, error) {
	var result string
	p := &survey.Input{
		Message: prompt,
		Default: defaultValue,
	}

	err := u.ask(p, &result)
	return result, err
}

// PromptSelect prompts the user to select from a list
func (u *UI) PromptSelect(prompt string, options []string) (int, error) {
	var selected int
	p := &survey.Select{
		Message: prompt,
		Options: options,
	}

	if err := u.ask(p, &selected); err != nil {
		return -1, err
	}
	if selected < 0 || selected >= len(options) {
		return -1, fmt.Errorf("selected option not found")
	}
	return selected, nil
}

// PromptEditor opens $VISUAL/$EDITOR on content and returns the edited text
func (u *UI) PromptEditor(prompt, content string) (string, error) {
	var result string
	p := &survey.Editor{
		Message:       prompt,
		Default:       content,
		AppendDefault: true,
		HideDefault:   true,
		FileName:      "hosts*.txt",
	}

	err := u.ask(p, &result)
	return result, err
}

// PromptFilePath prompts for an existing regular file, with tab completion
func (u *UI) PromptFilePath(prompt string) (string, error) {
	var result string
	p := &survey.Input{
		Message: prompt,
		Suggest: completePath,
	}

	err := u.ask(p, &result, survey.WithValidator(survey.Required), survey.WithValidator(validateFile))
	return result, err
}

func completePath(toComplete string) []string {
	matches, _ := filepath.Glob(toComplete + "*")
	return matches
}

func validateFile(ans interface{}) error {
	path, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
