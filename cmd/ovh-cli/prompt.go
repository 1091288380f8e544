package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errAborted is returned when the user declines a confirmation.
var errAborted = errors.New("aborted")

func (a *app) reader() *bufio.Reader {
	if a.in == nil {
		a.in = bufio.NewReader(a.stdin)
	}
	return a.in
}

// confirm asks a yes/no question before a destructive call. --yes and
// --dry-run skip the question; a non-interactive stdin without --yes is
// an error.
func (a *app) confirm(question string) error {
	if a.opts.yes || a.opts.dryRun {
		return nil
	}
	if !a.interactive {
		return fmt.Errorf("%s: confirmation required, rerun with --yes", question)
	}

	fmt.Fprintf(a.stderr, "%s [y/N] ", question)
	answer, err := a.readLine("")
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	}
	return errAborted
}

// prompt reads one line, returning def when the answer is empty.
func (a *app) prompt(label, def string) (string, error) {
	a.label(label, def)
	return a.readLine(def)
}

// promptSecret is prompt without echo when stdin is a terminal. The
// default is shown masked.
func (a *app) promptSecret(label, def string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !a.interactive {
		a.label(label, mask(def))
		return a.readLine(def)
	}

	a.label(label, mask(def))
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	if s := strings.TrimSpace(string(secret)); s != "" {
		return s, nil
	}
	return def, nil
}

func (a *app) readLine(def string) (string, error) {
	answer, err := a.reader().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer != "" {
		return answer, nil
	}
	return def, nil
}

func (a *app) label(label, shown string) {
	if shown != "" {
		fmt.Fprintf(a.stderr, "%s [%s]: ", label, shown)
		return
	}
	fmt.Fprintf(a.stderr, "%s: ", label)
}

// mask hides all but the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
