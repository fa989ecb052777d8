package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes contact messages to the structured log, where the
// support rota picks them up.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "contact_message",
		"name", msg.Name,
		"email", msg.Email,
		"message", msg.Message,
		"request_id", msg.RequestID,
	)
	return nil
}
