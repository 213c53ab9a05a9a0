package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

const (
	progressUpdateFrequency = 100 * time.Millisecond
	progressTrackerLength   = 30
	progressMessageLength   = 24
	progressStopPoll        = 10 * time.Millisecond
)

// Tracker is the part of a progress tracker the pipeline advances.
type Tracker interface {
	Increment(value int64)
	MarkAsDone()
}

// Tracking hands out trackers for a unit of work with a known total.
type Tracking interface {
	Track(message string, total int) Tracker
}

type nopTracker struct{}

func (nopTracker) Increment(int64) {}
func (nopTracker) MarkAsDone()     {}

type nopTracking struct{}

func (nopTracking) Track(string, int) Tracker { return nopTracker{} }

// NoProgress returns a Tracking that renders nothing.
func NoProgress() Tracking {
	return nopTracking{}
}

// Progress renders go-pretty progress bars until Stop is called.
type Progress struct {
	pw   progress.Writer
	done chan struct{}
}

var _ Tracking = (*Progress)(nil)

// NewProgress starts rendering to w.
func NewProgress(w io.Writer) *Progress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(progressTrackerLength)
	pw.SetMessageLength(progressMessageLength)
	pw.SetUpdateFrequency(progressUpdateFrequency)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Value = true
	pw.Style().Options.TimeInProgressPrecision = time.Second

	p := &Progress{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		pw.Render()
	}()

	return p
}

// Track appends a tracker for total units of work.
func (p *Progress) Track(message string, total int) Tracker {
	t := &progress.Tracker{Message: message, Total: int64(total)}
	p.pw.AppendTracker(t)
	return t
}

// Stop renders the final state and waits for the renderer to exit.
func (p *Progress) Stop() {
	for {
		p.pw.Stop()
		select {
		case <-p.done:
			return
		case <-time.After(progressStopPoll):
		}
	}
}
