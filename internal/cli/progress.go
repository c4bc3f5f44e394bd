package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress is a spinner on w that does nothing when quiet.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner with message on w. A quiet progress prints nothing.
func StartProgress(w io.Writer, message string, quiet bool) *Progress {
	if quiet {
		return &Progress{}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	return &Progress{s: s}
}

// Update replaces the spinner message.
func (p *Progress) Update(message string) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = " " + message
	p.s.Unlock()
}

// Stop stops the spinner and prints final, if any, on its line.
func (p *Progress) Stop(final string) {
	if p.s == nil {
		return
	}
	if final != "" {
		p.s.FinalMSG = final + "\n"
	}
	p.s.Stop()
}
