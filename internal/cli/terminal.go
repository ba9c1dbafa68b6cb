// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection, colour control and password input.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// fdOf returns the descriptor behind v when it is an *os.File.
func fdOf(v any) (int, bool) {
	f, ok := v.(*os.File)
	if !ok {
		return 0, false
	}
	return int(f.Fd()), true
}

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	fd, ok := fdOf(v)
	return ok && term.IsTerminal(fd)
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

// colorProfile picks the lipgloss profile for out. NO_COLOR wins, then
// FORCE_COLOR, then TTY detection.
func colorProfile(out io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" || isTerminal(out) {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

func configureColors(out io.Writer) {
	lipgloss.SetColorProfile(colorProfile(out))
}

// =============================================================================
// PASSWORD INPUT
// =============================================================================

// ErrNoPassword is returned when the password input is empty.
var ErrNoPassword = errors.New("no password provided")

// readPassword prompts on prompt and reads without echo when in is a
// terminal. Otherwise it reads the first line of in, so passwords can be piped.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if fd, ok := fdOf(in); ok && term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if len(raw) == 0 {
			return "", ErrNoPassword
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", ErrNoPassword
	}
	return line, nil
}
