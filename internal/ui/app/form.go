// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/accountctl/internal/ui/styles"
	"github.com/jeranaias/accountctl/internal/util"
)

// field describes one form input.
type field struct {
	label       string
	placeholder string
	limit       int
	// secret masks the value and skips normalisation.
	secret bool
}

var (
	emailField     = field{label: "Email", placeholder: "you@example.com", limit: 254}
	passwordField  = field{label: "Password", limit: 128, secret: true}
	ciField        = field{label: "CI", placeholder: "identity number", limit: 20}
	birthdateField = field{label: "Birthdate", placeholder: "YYYY-MM-DD", limit: 10}
	codeField      = field{label: "Code", placeholder: "recovery code", limit: 12}
)

// form is a vertical list of text inputs with one focused.
type form struct {
	fields []field
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...field) form {
	f := form{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, fd := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fd.placeholder
		ti.CharLimit = fd.limit
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		f.inputs[i] = ti
	}
	return f
}

func (f *form) focusAt(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *form) next() tea.Cmd { return f.focusAt(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusAt(f.focus - 1) }

func (f *form) onLast() bool {
	return f.focus == len(f.inputs)-1
}

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// value returns field i, normalised unless the field is secret.
func (f *form) value(i int) string {
	v := f.inputs[i].Value()
	if f.fields[i].secret {
		return v
	}
	return util.CleanInput(v)
}

// firstEmpty returns the index of the first blank field, or -1.
func (f *form) firstEmpty() int {
	for i := range f.inputs {
		if f.value(i) == "" {
			return i
		}
	}
	return -1
}

func (f *form) setValue(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
}

func (f *form) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f *form) view(theme *styles.Theme) string {
	rows := make([]string, 0, len(f.inputs))
	for i, in := range f.inputs {
		style := theme.FieldBlurred
		if i == f.focus && in.Focused() {
			style = theme.FieldFocused
		}
		rows = append(rows, style.Render(theme.Label.Render(f.fields[i].label)+in.View()))
	}
	return strings.Join(rows, "\n")
}
