// Command aikata-client is a line-oriented debug client for talking to a
// running aikata server over its websocket endpoint.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gorilla/websocket"
)

type outbound struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	PackageID string `json:"package_id,omitempty"`
	StickerID string `json:"sticker_id,omitempty"`
}

type inbound struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"room_id"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	userID := flag.String("user", "debug-user", "user id to connect as")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "user_id=" + url.QueryEscape(*userID)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", u.String(), err)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s as %s\n", *addr, *userID)
	fmt.Println("Commands: /start, /stamp, /finish, /quit. Anything else is sent as a message.")

	go readPump(conn)

	rl, err := readline.New("> ")
	if err != nil {
		log.Fatalf("Failed to init readline: %v", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var msg outbound
		switch line {
		case "/quit":
			return
		case "/start":
			msg = outbound{Type: "start"}
		case "/finish":
			msg = outbound{Type: "finish"}
		case "/stamp":
			msg = outbound{Type: "stamp", PackageID: "1", StickerID: "1"}
		default:
			msg = outbound{Type: "message", Text: line}
		}

		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
	}
}

// readPump prints every envelope the server pushes until the connection
// drops.
func readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Println("\nconnection closed:", err)
			os.Exit(0)
		}

		var env inbound
		if err := json.Unmarshal(data, &env); err != nil {
			fmt.Printf("\n<< %s\n> ", data)
			continue
		}

		switch env.Type {
		case "message":
			var payload struct {
				Message string `json:"message"`
			}
			json.Unmarshal(env.Data, &payload)
			fmt.Printf("\n[assistant] %s\n> ", payload.Message)
		case "stamp":
			var payload struct {
				Name string `json:"name"`
			}
			json.Unmarshal(env.Data, &payload)
			fmt.Printf("\n[stamp] %s\n> ", payload.Name)
		default:
			fmt.Printf("\n[%s] %s\n> ", env.Type, env.Data)
		}
	}
}
