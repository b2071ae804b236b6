package auth

import "context"

// Notifier presents user-facing messages. The CLI backs this with console
// output; a GUI host would back it with notifications.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// ProgressRunner wraps a long-running operation in user-visible progress
// indication.
type ProgressRunner interface {
	Run(ctx context.Context, title string, fn func(ctx context.Context) error) error
}

// UsageRecorder records feature-usage signals. Emission is the host's
// concern; the provider only reports that a feature was used.
type UsageRecorder interface {
	FeatureUsed(feature string)
}

type noopNotifier struct{}

func (noopNotifier) Info(string)  {}
func (noopNotifier) Error(string) {}

type noopProgress struct{}

func (noopProgress) Run(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopUsage struct{}

func (noopUsage) FeatureUsed(string) {}
