package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/identity"
	"github.com/kjarir/echosphere/internal/proto"
	"github.com/kjarir/echosphere/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	ids  *identity.Provider
	rate int
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, ids *identity.Provider, rate int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, ids: ids, rate: rate, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := h.handshake(ctx, conn)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws handshake failed")
		conn.Close(websocket.StatusPolicyViolation, "hello required")
		return
	}

	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	limiter := newRateLimiter(h.rate)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// handshake reads messages until the client introduces itself with hello,
// then resolves its identity and builds the core client.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn) (*core.Client, error) {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return nil, err
		}
		if inbound.Type != proto.InboundTypeHello {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: "hello must be the first message"},
			}); err != nil {
				return nil, err
			}
			continue
		}

		var hello proto.HelloData
		if err := unmarshalHello(inbound, &hello); err != nil {
			return nil, err
		}
		if hello.User == "" {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: "user is required"},
			}); err != nil {
				return nil, err
			}
			continue
		}

		profile, err := h.ids.Ensure(ctx, hello.User, hello.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve identity: %w", err)
		}

		client := core.NewClient(utils.NewID(), profile.ID, profile.DisplayName)
		client.AvatarURL = profile.AvatarURL
		return client, nil
	}
}

func unmarshalHello(inbound proto.Inbound, hello *proto.HelloData) error {
	if len(inbound.Data) == 0 {
		return errors.New("hello data is required")
	}
	return json.Unmarshal(inbound.Data, hello)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "rate_limited", Msg: "too many messages"},
			}); writeErr != nil {
				return writeErr
			}
			continue
		}

		cmd, protoErr, err := inboundToCommand(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to map inbound")
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}
		if cmd != nil {
			select {
			case client.Commands <- cmd:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
