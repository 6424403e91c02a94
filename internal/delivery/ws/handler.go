package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
	"github.com/google/uuid"
)

// WSHandler upgrades the connection, registers the client with the hub and
// feeds its events into the relay. Invalid frames get an error frame back
// and never touch relay state.
func WSHandler(hub *Hub, relay ports.Relay, notifier ports.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "ws upgrade failed", http.StatusBadRequest)
			return
		}

		client := NewClient(conn)
		hub.Register(client)
		notifyAsync(notifier, "client_connected", client.ID)

		defer func() {
			hub.Unregister(client)
			notifyAsync(notifier, "client_disconnected", client.ID)
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("[ws] disconnect client=%s", client.ID)
				return
			}

			var ev clientEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				_ = client.write(encodeError("bad json"))
				continue
			}

			switch ev.Type {
			case "sendMessage":
				if ev.Message == nil {
					_ = client.write(encodeError("missing message"))
					continue
				}
				relay.Submit(client.ID, newMessage(*ev.Message))

			case "blobUploadComplete":
				if ev.Key == "" || ev.URL == "" {
					_ = client.write(encodeError("missing key or url"))
					continue
				}
				relay.UploadComplete(ev.Key, ev.URL)

			default:
				_ = client.write(encodeError("unknown event type"))
			}
		}
	}
}

// newMessage shapes an incoming wire message into the domain model. The
// content variant is decided here, once: a media URL means the blob was
// uploaded out of band and nothing needs resolution.
func newMessage(wm wireMessage) models.Message {
	msg := models.Message{
		ID:        wm.ID,
		Sender:    wm.Sender,
		CreatedAt: time.Now(),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	if wm.MediaURL != "" {
		msg.Content = models.DirectMedia{URL: wm.MediaURL, Caption: wm.Caption}
	} else {
		msg.Content = models.TextWithReferences{Text: wm.Text}
	}
	return msg
}

func notifyAsync(n ports.Notifier, event, clientID string) {
	if n == nil {
		return
	}
	go func() {
		if err := n.Notify(context.Background(), event, map[string]any{"client": clientID}); err != nil {
			log.Printf("[notify] %s: %v", event, err)
		}
	}()
}
