package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter presents the authorization URL to the operator and returns the
// authorization code once they have approved access
type Prompter interface {
	PromptCode(ctx context.Context, authURL, state string) (string, error)
}

// LinePrompter prints the URL and reads the code as one line of input
type LinePrompter struct {
	in  io.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter reading from in and writing to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

func (p *LinePrompter) PromptCode(ctx context.Context, authURL, _ string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "Browse to: %s\nAuthorization code: ", authURL); err != nil {
		return "", err
	}

	type result struct {
		line string
		err  error
	}
	// the read cannot be interrupted, so it is abandoned on cancellation
	done := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		done <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", r.err)
		}
		return r.line, nil
	}
}
