package push

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogClient is a Client for headless runs: permission is always granted
// and registration yields a random token.
type LogClient struct {
	logger  *slog.Logger
	handler Handler
}

// NewLogClient creates a LogClient.
func NewLogClient(logger *slog.Logger) *LogClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogClient{logger: logger}
}

func (c *LogClient) RequestPermissions(ctx context.Context) (Permission, error) {
	return PermissionGranted, ctx.Err()
}

func (c *LogClient) Register(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.handler != nil {
		c.handler.OnRegistration(uuid.NewString())
	}
	return nil
}

func (c *LogClient) Listen(h Handler) {
	c.handler = h
}

// Deliver hands n to the installed handler, if any.
func (c *LogClient) Deliver(n Notification) {
	if c.handler == nil {
		c.logger.Debug("push notification dropped, no handler", "id", n.ID)
		return
	}
	c.handler.OnNotification(n)
}

var _ Client = (*LogClient)(nil)
