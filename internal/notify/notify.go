package notify

import (
	"context"
	"sync"

	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/pkg/enums"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// Notification is one user-facing message emitted by an engine.
type Notification struct {
	Message  string         `json:"message"`
	Severity enums.Severity `json:"severity"`
}

// Collector buffers notifications so a request handler can return them
// alongside its result. Renders are ignored; handlers already hold the
// snapshot returned by the operation.
type Collector struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, message string, severity enums.Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, Notification{Message: message, Severity: severity})
}

func (c *Collector) Render(context.Context, cart.Snapshot) {}

// Notifications returns the buffered messages in emission order.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// LogSink writes engine notifications to the structured logger.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, message string, severity enums.Severity) {
	if s == nil || s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification": message,
		"severity":     severity.String(),
	})
	switch severity {
	case enums.SeverityError:
		s.logg.Error(ctx, "cart.notify", nil)
	case enums.SeverityWarning:
		s.logg.Warn(ctx, "cart.notify")
	default:
		s.logg.Debug(ctx, "cart.notify")
	}
}

func (s *LogSink) Render(ctx context.Context, snapshot cart.Snapshot) {
	if s == nil || s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"surface":    snapshot.Surface.String(),
		"item_count": snapshot.ItemCount,
		"subtotal":   snapshot.Subtotal.StringFixed(2),
		"total":      snapshot.Total.StringFixed(2),
	})
	s.logg.Debug(ctx, "cart.render")
}
