package slackbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
)

// Client posts to one channel and resolves users by email.
type Client struct {
	api     *slack.Client
	channel string
	logger  *slog.Logger
}

// New creates a Slack client. apiURL is only set when talking to something
// other than slack.com, e.g. in tests.
func New(token, channel, apiURL string, logger *slog.Logger) *Client {
	var opts []slack.Option
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:     slack.New(token, opts...),
		channel: channel,
		logger:  logger,
	}
}

func (c *Client) Channel() string {
	return c.channel
}

// Mention looks a user up by email and returns a mention token for them.
func (c *Client) Mention(ctx context.Context, email string) (string, error) {
	user, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		c.logger.Warn("slack user lookup failed", "email", email, "error", err)
		return "", fmt.Errorf("lookup %s: %w", email, err)
	}
	if user == nil || user.ID == "" {
		c.logger.Warn("slack user lookup returned no id", "email", email)
		return "", fmt.Errorf("lookup %s: empty user id", email)
	}
	return fmt.Sprintf("<@%s>", user.ID), nil
}

// Post sends text to the configured channel. The returned error carries the
// reason Slack gave.
func (c *Client) Post(ctx context.Context, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post to %s: %w", c.channel, err)
	}
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}
	c.logger.Debug("slack auth ok", "team", resp.Team, "user", resp.User)
	return nil
}
