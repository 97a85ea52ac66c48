package contact

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Outcome is the result of one sink invocation, created fresh per dispatch
// attempt and never retained.
type Outcome struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Delivered returns a successful outcome.
func Delivered() Outcome {
	return Outcome{OK: true}
}

// SkippedOutcome reports that a sink's configuration is absent. A skip is
// deliberate, not an error state.
func SkippedOutcome(reason string) Outcome {
	return Outcome{OK: false, Skipped: true, Reason: reason}
}

// FailedOutcome reports a delivery attempt that did not succeed.
func FailedOutcome(err error) Outcome {
	return Outcome{OK: false, Error: err.Error()}
}

// Sink delivers a validated submission to one external channel. Deliver
// must not panic under normal operation, but the dispatcher still recovers
// a panicking sink into a failed outcome so siblings are unaffected.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, sub *Submission) Outcome
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, sub *Submission) Outcome
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Deliver(ctx context.Context, sub *Submission) Outcome {
	return s.Fn(ctx, sub)
}

// Dispatcher fans a submission out to its sinks concurrently and waits for
// every sink to settle before aggregating. Sinks hold no shared mutable
// state, so no locking is needed beyond the join itself.
type Dispatcher struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over the given sinks. Outcome order in
// every dispatch matches the order of sinks here, independent of which sink
// finishes first.
func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Dispatch invokes every sink concurrently, waits for all of them to settle
// (a settle-all join, never first-failure), and returns the per-sink
// outcomes plus an overall flag that is true when at least one sink
// delivered. Partial failure is an expected result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, sub *Submission) ([]Outcome, bool) {
	outcomes := make([]Outcome, len(d.sinks))

	var wg sync.WaitGroup
	for i, sink := range d.sinks {
		wg.Add(1)
		go func(i int, sink Sink) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, sink, sub)
		}(i, sink)
	}
	wg.Wait()

	anyOK := false
	for i, outcome := range outcomes {
		if outcome.OK {
			anyOK = true
		}
		d.logOutcome(d.sinks[i].Name(), outcome)
	}
	return outcomes, anyOK
}

// deliver wraps one sink call so a panic becomes a failed outcome rather
// than aborting the sibling deliveries.
func (d *Dispatcher) deliver(ctx context.Context, sink Sink, sub *Submission) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sink panicked during delivery",
				zap.String("sink", sink.Name()),
				zap.Any("panic", r))
			outcome = FailedOutcome(fmt.Errorf("%s sink panicked: %v", sink.Name(), r))
		}
	}()
	return sink.Deliver(ctx, sub)
}

func (d *Dispatcher) logOutcome(name string, outcome Outcome) {
	switch {
	case outcome.OK:
		d.logger.Info("sink delivered", zap.String("sink", name))
	case outcome.Skipped:
		d.logger.Debug("sink skipped", zap.String("sink", name), zap.String("reason", outcome.Reason))
	default:
		d.logger.Warn("sink delivery failed", zap.String("sink", name), zap.String("error", outcome.Error))
	}
}
