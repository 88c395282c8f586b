package progress

import (
	"context"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// spinnerInterval is the spinner frame rate.
const spinnerInterval = 100 * time.Millisecond

// Wait blocks for d or until ctx is done. When caps.IsTTY is set a spinner
// with message is drawn on w for the duration. It returns ctx.Err() when the
// wait was cut short.
func Wait(ctx context.Context, d time.Duration, w io.Writer, message string, caps TerminalCapabilities) error {
	if d <= 0 {
		return ctx.Err()
	}

	if caps.IsTTY {
		symbols := SelectSymbols(caps)
		s := spinner.New(spinner.CharSets[symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(w))
		s.Suffix = " " + message
		s.Start()
		defer s.Stop()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
