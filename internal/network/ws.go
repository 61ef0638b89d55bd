package network

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/yourorg/meteo-alertes/internal/alert"
	"github.com/yourorg/meteo-alertes/internal/model"
)

const wsReadWait = 90 * time.Second

// Subscribe keeps a WebSocket subscription to the server's alert stream
// open, pushing each received record onto out. Reconnects with
// exponential backoff and returns only when ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, out chan<- model.AlertRecord) {
	wsURL, err := c.websocketURL()
	if err != nil {
		log.Printf("ERROR: cannot build WebSocket URL: %v", err)
		return
	}
	log.Printf("Subscribing to alert stream: %s", wsURL)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0 // keep reconnecting until cancelled

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 15 * time.Second,
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := bo.NextBackOff()
			log.Printf("WebSocket dial error: %v. Reconnecting in %v...", err, wait)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return
			}
		}

		log.Println("WebSocket connection established.")
		bo.Reset()

		c.readLoop(ctx, conn, out)
		log.Println("WebSocket connection closed.")

		if ctx.Err() != nil {
			return
		}
	}
}

// readLoop reads records until the connection breaks or ctx ends.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- model.AlertRecord) {
	defer conn.Close()

	// The server pings on its keepalive period; refresh the deadline on
	// each ping and answer with a pong.
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(10*time.Second))
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "watcher shutting down"),
				time.Now().Add(10*time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var doc map[string]any
		if err := conn.ReadJSON(&doc); err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		rec := alert.Normalize(doc)
		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) websocketURL() (string, error) {
	u := *c.base
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q for WebSocket", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
