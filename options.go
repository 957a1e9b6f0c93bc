// options.go — functional options for Hub.
//
// Every option has a neutral default, so NewHub() with no options captures exactly
// the ambient view and merges exactly "current view + missing snapshot keys".
package throwctx

import (
	"context"
	"io"
	"log/slog"
)

// Source contributes extra fields at raise time, beneath the ambient view:
// on key collision the ambient view wins. A Source must be cheap and must not
// block; a panicking Source is recovered and ignored.
type Source func(ctx context.Context) []Field

// Outcome classifies what a single raise or eviction did to the store.
type Outcome int

const (
	// OutcomeCaptured: first raise of an instance; a snapshot was stored.
	OutcomeCaptured Outcome = iota
	// OutcomeDuplicate: the instance already had a snapshot; nothing changed.
	OutcomeDuplicate
	// OutcomeUnsupported: the error has no pointer identity; nothing stored.
	OutcomeUnsupported
	// OutcomeFailed: capture panicked internally and was abandoned.
	OutcomeFailed
	// OutcomeEvicted: an entry was dropped after its error became unreachable.
	OutcomeEvicted
	// OutcomeExtended: a re-raise added keys to an existing snapshot
	// (WithRethrowFill only).
	OutcomeExtended
)

// String returns the lowercase outcome name used as a metric label.
func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeFailed:
		return "failed"
	case OutcomeEvicted:
		return "evicted"
	case OutcomeExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Observer receives outcomes. It is called synchronously on the raising
// goroutine (and on the runtime cleanup goroutine for OutcomeEvicted), so it
// must be fast and safe for concurrent use.
type Observer func(Outcome)

type options struct {
	errorIDKey string
	siteKey    string
	maxFields  int
	unwrap     bool
	fill       bool
	sources    []Source
	observers  []Observer
	logger     *slog.Logger
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Hub.
type Option func(*options)

// WithErrorIDKey makes Merge add key=<snapshot id> when a snapshot exists and
// the key is absent from the view. Empty key disables it (default).
func WithErrorIDKey(key string) Option {
	return func(o *options) { o.errorIDKey = key }
}

// WithRaiseSite records "function file:line" of the raise call into the
// snapshot under key. Empty key disables it (default).
func WithRaiseSite(key string) Option {
	return func(o *options) { o.siteKey = key }
}

// WithMaxFields bounds each snapshot to the newest n fields. n <= 0 means
// unbounded (default).
func WithMaxFields(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFields = n
		}
	}
}

// WithUnwrap makes Merge also consult snapshots of errors reachable through
// Unwrap chains. Off by default: a new error instance never inherits the
// snapshot of an error it wraps.
func WithUnwrap(enabled bool) Option {
	return func(o *options) { o.unwrap = enabled }
}

// WithRethrowFill lets a re-raise of an already captured instance add the keys
// its snapshot lacks; keys already captured are never overwritten or evicted.
// Under WithMaxFields added keys only take the room still free. Off by default,
// where every re-raise is a no-op.
func WithRethrowFill(enabled bool) Option {
	return func(o *options) { o.fill = enabled }
}

// WithSource adds raise-time sources, applied in order.
func WithSource(src ...Source) Option {
	return func(o *options) {
		for _, s := range src {
			if s != nil {
				o.sources = append(o.sources, s)
			}
		}
	}
}

// WithObserver adds outcome observers.
func WithObserver(obs ...Observer) Option {
	return func(o *options) {
		for _, ob := range obs {
			if ob != nil {
				o.observers = append(o.observers, ob)
			}
		}
	}
}

// WithLogger sets where recovered internal failures are reported (Debug level).
// Nil keeps the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
