package interfaces

import "context"

// Notifier sends a best-effort notification with an optional attachment path.
type Notifier interface {
	Send(ctx context.Context, subject, body, attachmentPath string) error
}
