package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

// Notification is a push payload dispatched to one or more device tokens.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sender fans a notification out to device tokens. Invalid tokens are
// reported back so callers can prune them.
type Sender interface {
	Send(ctx context.Context, tokens []string, n Notification) (invalid []string, err error)
}

type multicaster interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client sends push notifications through Firebase Cloud Messaging.
type Client struct {
	fcm  multicaster
	logg *logger.Logger
}

// New initializes the Firebase app and its messaging client. Credentials
// resolve through GOOGLE_APPLICATION_CREDENTIALS when no explicit JSON is
// configured.
func New(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	fcm, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing fcm client: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "fcm client initialized")
	}
	return &Client{fcm: fcm, logg: logg}, nil
}

// Send delivers the notification to every token via multicast. FCM caps a
// multicast batch at 500 tokens, so larger sets are chunked.
func (c *Client) Send(ctx context.Context, tokens []string, n Notification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var invalid []string
	for start := 0; start < len(tokens); start += 500 {
		end := start + 500
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]
		resp, err := c.fcm.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		})
		if err != nil {
			return invalid, fmt.Errorf("fcm multicast: %w", err)
		}
		for i, r := range resp.Responses {
			if r.Success {
				continue
			}
			if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
				invalid = append(invalid, batch[i])
				continue
			}
			if c.logg != nil {
				c.logg.Warn(ctx, fmt.Sprintf("fcm delivery failed: %v", r.Error))
			}
		}
	}
	return invalid, nil
}

// NewNoop returns a sender that drops notifications. Used when push is not
// configured.
func NewNoop(logg *logger.Logger) Sender {
	return &noopSender{logg: logg}
}

type noopSender struct {
	logg *logger.Logger
}

func (n *noopSender) Send(ctx context.Context, tokens []string, _ Notification) ([]string, error) {
	if n.logg != nil && len(tokens) > 0 {
		n.logg.Warn(ctx, fmt.Sprintf("push disabled, dropping notification for %d tokens", len(tokens)))
	}
	return nil, nil
}
