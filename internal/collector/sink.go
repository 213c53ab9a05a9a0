package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulbousquet/fomcscrape/internal/domain"
)

// Sink persists a run's deduplicated links.
type Sink interface {
	Write(ctx context.Context, links []domain.DiscoveredLink) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, links []domain.DiscoveredLink) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, links []domain.DiscoveredLink) error {
	return f(ctx, links)
}

// NamedSink labels a sink for error reporting.
type NamedSink struct {
	Name string
	Sink Sink
}

// MultiSink writes to every sink in order. A failing sink does not stop the
// others; all failures are joined.
type MultiSink []NamedSink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, links []domain.DiscoveredLink) error {
	var errs []error
	for _, s := range m {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Sink.Write(ctx, links); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
