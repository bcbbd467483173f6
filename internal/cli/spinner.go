package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress is a spinner shown while waiting on the user or the network.
// A nil *Progress is valid and does nothing, which is what quiet mode uses.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner on out with the given message.
// It returns nil when quiet is set.
func StartProgress(out io.Writer, message string, quiet bool) *Progress {
	if quiet {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + message
	s.Start()
	return &Progress{s: s}
}

// Success stops the spinner and leaves a green message behind.
func (p *Progress) Success(message string) {
	p.stop(text.FgGreen.Sprint(message))
}

// Fail stops the spinner and leaves a red message behind.
func (p *Progress) Fail(message string) {
	p.stop(text.FgRed.Sprint(message))
}

// Stop stops the spinner without a final message.
func (p *Progress) Stop() {
	p.stop("")
}

func (p *Progress) stop(final string) {
	if p == nil || p.s == nil {
		return
	}
	if final != "" {
		p.s.FinalMSG = final + "\n"
	}
	p.s.Stop()
}
