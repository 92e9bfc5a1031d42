package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/infra"
)

const (
	defaultEndpoint = "https://api.pushover.net/1/messages.json"
	defaultTitle    = "Dictation"

	// Pushover rejects messages longer than this many characters.
	maxMessageLen = 1024
)

var _ application.Notifier = (*Client)(nil)

type Client struct {
	token      string
	userKey    string
	title      string
	endpoint   string
	httpClient *http.Client
}

func NewClient(token, userKey, title string) *Client {
	return NewClientWithURL(token, userKey, title, defaultEndpoint)
}

func NewClientWithURL(token, userKey, title, endpoint string) *Client {
	if title == "" {
		title = defaultTitle
	}
	return &Client{
		token:      token,
		userKey:    userKey,
		title:      title,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether both credentials are set. Notify is a no-op
// otherwise.
func (c *Client) Enabled() bool {
	return c.token != "" && c.userKey != ""
}

func (c *Client) Notify(ctx context.Context, message string) error {
	if !c.Enabled() {
		return nil
	}

	if utf8.RuneCountInString(message) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen-3]) + "..."
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", c.title)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	return infra.CheckResponse("pushover", resp)
}
