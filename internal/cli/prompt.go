package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer. EOF with no input
// returns io.EOF.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	answer, err := p.in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if err != nil {
		if err == io.EOF && answer != "" {
			return answer, nil
		}
		if err == io.EOF {
			fmt.Fprintln(p.out)
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return answer, nil
}

// Confirm asks a yes/no question that defaults to no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question + " [y/N]: ")
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
