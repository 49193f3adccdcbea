package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultControlSubject carries control messages over NATS.
const DefaultControlSubject = "solo.agent.control"

// ControlSubscriber delivers NATS control messages to an agent.
type ControlSubscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// SubscribeControl connects to the NATS server at url and applies every
// message on subject as a control message. Requests with a reply subject
// are answered with "ok" or the error text.
func SubscribeControl(ctx context.Context, url, subject string, a *Agent) (*ControlSubscriber, error) {
	if subject == "" {
		subject = DefaultControlSubject
	}
	conn, err := nats.Connect(url, nats.Name("solo-agent"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	sub, err := conn.Subscribe(subject, controlHandler(ctx, a))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	slog.Info("NATS control channel ready", "url", url, "subject", subject)
	return &ControlSubscriber{conn: conn, sub: sub}, nil
}

// Close unsubscribes and closes the connection.
func (c *ControlSubscriber) Close() {
	if c == nil {
		return
	}
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func controlHandler(ctx context.Context, a *Agent) nats.MsgHandler {
	return func(msg *nats.Msg) {
		err := a.HandleControl(ctx, msg.Data)
		if err != nil {
			slog.Warn("control message rejected", "subject", msg.Subject, "error", err)
		}
		if msg.Reply == "" {
			return
		}
		reply := []byte("ok")
		if err != nil {
			reply = []byte(err.Error())
		}
		if rerr := msg.Respond(reply); rerr != nil {
			slog.Debug("control reply failed", "error", rerr)
		}
	}
}

// PublishControl sends one control message over NATS and waits for the
// agent's reply.
func PublishControl(url, subject, msgType string, timeout time.Duration) (string, error) {
	if subject == "" {
		subject = DefaultControlSubject
	}
	payload, err := json.Marshal(ControlMessage{Type: msgType})
	if err != nil {
		return "", fmt.Errorf("encode control message: %w", err)
	}
	conn, err := nats.Connect(url, nats.Name("solo-control"))
	if err != nil {
		return "", fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	msg, err := conn.Request(subject, payload, timeout)
	if err != nil {
		return "", fmt.Errorf("control request on %s: %w", subject, err)
	}
	return string(msg.Data), nil
}
