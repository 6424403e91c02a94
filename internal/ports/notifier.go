package ports

import "context"

// Notifier is the best-effort push notification sink. Callers fire it in a
// goroutine and log failures; errors never reach the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, event string, fields map[string]any) error
}
