package dispatch

import (
	"context"

	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// NoopDispatcher implements domain.Dispatcher without touching the project.
// Useful for dry runs and tests.
type NoopDispatcher struct{}

// NewNoopDispatcher creates a new no-op dispatcher.
func NewNoopDispatcher() *NoopDispatcher {
	return &NoopDispatcher{}
}

// Perform reports the window the effect would produce.
func (n *NoopDispatcher) Perform(ctx context.Context, inv domain.InvocationContext, _ domain.Instance, settings *domain.EffectSettings) (domain.DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}
	window := inv.Window
	if inv.Effect.IsGenerator() && !window.IsSelection() {
		window.End = window.Start + settings.Duration
	}
	logging.Infof("dry run: %s over %.6f..%.6f", inv.Effect.ID, window.Start, window.End)
	return domain.DispatchResult{Window: window}, nil
}

// Preview does nothing and always succeeds.
func (n *NoopDispatcher) Preview(context.Context, domain.InvocationContext, domain.Instance, *domain.EffectSettings) error {
	return nil
}
