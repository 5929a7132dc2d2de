package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errNoTerminal = errors.New("password required: pass --password or run in a terminal")

// readPassword prompts on w and reads a line from stdin without echo.
func readPassword(w io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}
	_, _ = fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// passwordWithConfirm returns flagValue twice when set, otherwise prompts
// for the password and its confirmation.
func passwordWithConfirm(w io.Writer, flagValue string) (string, string, error) {
	if flagValue != "" {
		return flagValue, flagValue, nil
	}
	pw, err := readPassword(w, "Password: ")
	if err != nil {
		return "", "", err
	}
	confirm, err := readPassword(w, "Confirm password: ")
	if err != nil {
		return "", "", err
	}
	return pw, confirm, nil
}
