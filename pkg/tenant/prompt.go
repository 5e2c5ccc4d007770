package tenant

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks the user to pick one of the presented options and returns the
// chosen option.
type Prompter interface {
	Select(label string, options []string) (string, error)
}

// StdioPrompter is a numbered-menu prompter over plain reader/writer streams.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Select prints a numbered menu and reads the chosen index from the input.
func (p *StdioPrompter) Select(label string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options to select from")
	}
	_, _ = fmt.Fprintf(p.Out, "%s:\n", label)
	for i, option := range options {
		_, _ = fmt.Fprintf(p.Out, "  %d) %s\n", i+1, option)
	}
	_, _ = fmt.Fprintf(p.Out, "Enter choice [1-%d]: ", len(options))

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}
	index, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || index < 1 || index > len(options) {
		return "", fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return options[index-1], nil
}
