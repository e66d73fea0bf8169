package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompt writes label and reads one line. Input ending without a newline is
// still accepted.
func prompt(w io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptIfEmpty keeps value when set and asks otherwise.
func promptIfEmpty(w io.Writer, r *bufio.Reader, value *string, label string) error {
	if *value != "" {
		return nil
	}
	v, err := prompt(w, r, label)
	if err != nil {
		return err
	}
	*value = v
	return nil
}
