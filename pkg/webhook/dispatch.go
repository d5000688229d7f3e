package webhook

import (
	"context"
	"log/slog"

	"github.com/ccollicutt/chatlens/pkg/config"
)

// ShouldFire reports whether a webhook with the given trigger fires for a
// run that succeeded or failed.
func ShouldFire(trigger config.WebhookTrigger, succeeded bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return succeeded
	}
}

// Result records the outcome of one webhook delivery.
type Result struct {
	Name     string
	Response *Response
}

// Dispatch sends payload to every hook whose trigger matches. Delivery
// failures are logged and returned, never fatal.
func (c *Client) Dispatch(ctx context.Context, hooks []config.WebhookConfig, payload *Payload, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var results []Result
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, payload.Succeeded()) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, payload, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		if resp.Success() {
			logger.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			logger.Warn("webhook failed", "webhook", name, "error", resp.Error)
		}
		results = append(results, Result{Name: name, Response: resp})
	}
	return results
}
