package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeStartRoom  = 104
	MsgTypeResetRoom  = 105
	MsgTypeMove       = 201
)

var currentRoom string

// send formats and sends a framed message to the server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func roomPayload() []byte {
	data, _ := json.Marshal(map[string]string{"room": currentRoom})
	return data
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]

			// Remember the room id echoed back by create.
			if msgID == MsgTypeCreateRoom {
				var resp map[string]string
				if json.Unmarshal(data, &resp) == nil {
					currentRoom = resp["room"]
				}
			}
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands: create | join <room> | start | reset | move <slot>  (slots are 0-0 .. 2-2)")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				err = send(c, MsgTypeCreateRoom, []byte{})
			case "join":
				if len(fields) < 2 {
					log.Println("Usage: join <room>")
					continue
				}
				currentRoom = fields[1]
				err = send(c, MsgTypeJoinRoom, roomPayload())
			case "start":
				err = send(c, MsgTypeStartRoom, roomPayload())
			case "reset":
				err = send(c, MsgTypeResetRoom, roomPayload())
			case "move":
				if len(fields) < 2 {
					log.Println("Usage: move <slot>")
					continue
				}
				data, _ := json.Marshal(map[string]interface{}{
					"room": currentRoom,
					"data": map[string]string{"slot": fields[1]},
				})
				err = send(c, MsgTypeMove, data)
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
