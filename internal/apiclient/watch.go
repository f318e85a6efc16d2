package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"budget/internal/websocket"

	gorilla "github.com/gorilla/websocket"
)

// Watch subscribes to the signed-in user's change feed and calls fn for each
// event until ctx is cancelled or the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(websocket.ChangeEvent)) error {
	target, err := c.wsURL()
	if err != nil {
		return err
	}
	conn, resp, err := gorilla.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return &APIError{Status: resp.StatusCode, Message: "unauthorized"}
		}
		return fmt.Errorf("dial change feed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var event websocket.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(event)
	}
}

func (c *Client) wsURL() (string, error) {
	token := c.Token()
	if token == "" {
		return "", errors.New("watch requires a session token")
	}
	u, err := url.Parse(c.baseURL + "/api/ws")
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
