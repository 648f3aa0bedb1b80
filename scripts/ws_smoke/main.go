package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/kjarir/echosphere/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "user-5", "identity id to announce with hello")
	room := flag.String("room", "room-1", "room id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	emoji := flag.String("emoji", "🔥", "reaction to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msgType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", msgType, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{User: *user}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoin, proto.JoinData{Room: *room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeMsg, proto.MsgData{Room: *room, Text: *text}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeReact, proto.ReactData{Room: *room, Emoji: *emoji}); err != nil {
		return err
	}

	// Print a few events, including at least one active speaker update.
	for i := 0; i < 6; i++ {
		var out proto.Outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		raw, _ := json.Marshal(out)
		fmt.Println(string(raw))
	}

	return send(proto.InboundTypeLeave, proto.RoomData{Room: *room})
}
