package services

import (
	"context"
	"log/slog"
)

// LogResetNotifier writes reset links to the log. It is only wired outside
// production, where there is no mail transport.
type LogResetNotifier struct {
	logger *slog.Logger
}

func NewLogResetNotifier(logger *slog.Logger) *LogResetNotifier {
	return &LogResetNotifier{logger: logger}
}

func (n *LogResetNotifier) SendResetLink(ctx context.Context, email, link string) error {
	n.logger.InfoContext(ctx, "password reset link issued", "email", email, "link", link)
	return nil
}
