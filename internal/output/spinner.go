package output

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner is a progress indicator that is only shown on a terminal.
// A nil *Spinner is valid and does nothing.
type Spinner struct {
	s *spinner.Spinner
}

// StartSpinner starts a spinner on f when f is a terminal, otherwise returns nil.
func StartSpinner(f *os.File, suffix string) *Spinner {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
	s.Color("yellow") //nolint:errcheck
	s.Suffix = " " + suffix
	s.Start()
	return &Spinner{s: s}
}

// Update replaces the text shown after the spinner.
func (sp *Spinner) Update(suffix string) {
	if sp == nil {
		return
	}
	sp.s.Lock()
	sp.s.Suffix = " " + suffix
	sp.s.Unlock()
}

// Stop halts the spinner and clears its line.
func (sp *Spinner) Stop() {
	if sp == nil {
		return
	}
	sp.s.Stop()
}
