package main

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent = "#2F6FEB"
	colorMuted  = "#8B949E"
	colorOK     = "#2EA043"
	colorError  = "#DA3633"
)

var styles = struct {
	title, muted, success, failure lipgloss.Style
}{
	title:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true),
	muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK)),
	failure: lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)),
}

// prompter asks the user for one step's worth of input.
type prompter interface {
	Input(title, description, placeholder string, value *string) error
	Text(title, placeholder string, value *string) error
	Select(title string, labels []string, selected *int) error
	Contact(title, description string, first, last, email *string) error
}

type huhPrompter struct {
	theme *huh.Theme
}

func newHuhPrompter() huhPrompter {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(lipgloss.Color(colorAccent)).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(lipgloss.Color(colorMuted))
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(lipgloss.Color(colorAccent))
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(lipgloss.Color(colorAccent))
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(lipgloss.Color(colorMuted))
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(lipgloss.Color(colorError))
	return huhPrompter{theme: t}
}

func (p huhPrompter) form(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(p.theme).Run()
}

func (p huhPrompter) Input(title, description, placeholder string, value *string) error {
	return p.form(huh.NewInput().
		Title(title).
		Description(description).
		Placeholder(placeholder).
		Value(value))
}

func (p huhPrompter) Text(title, placeholder string, value *string) error {
	return p.form(huh.NewText().
		Title(title).
		Placeholder(placeholder).
		Value(value))
}

func (p huhPrompter) Select(title string, labels []string, selected *int) error {
	opts := make([]huh.Option[int], len(labels))
	for i, label := range labels {
		opts[i] = huh.NewOption(label, i)
	}
	return p.form(huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(selected))
}

func (p huhPrompter) Contact(title, description string, first, last, email *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title).Description(description),
			huh.NewInput().Title("First name").Value(first),
			huh.NewInput().Title("Last name").Value(last),
			huh.NewInput().Title("Email").Value(email),
		),
	).WithTheme(p.theme).Run()
}
