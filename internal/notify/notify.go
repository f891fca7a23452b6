package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// LogNotifier writes messages to the request logger. Used when no SMTP
// server is configured.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg Message) error {
	logging.FromContext(ctx).Info("notification",
		slog.String("subject", msg.Subject),
		slog.String("recipients", strings.Join(msg.Recipients, ",")),
	)
	return nil
}
