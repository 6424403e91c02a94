package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/models"
)

// Wire envelope for both directions. Client events: "sendMessage" (with
// message), "blobUploadComplete" (with key and url). Server events:
// "newMessage" (broadcast), "requestBlobUpload" (directed), "error".
type clientEvent struct {
	Type    string       `json:"type"`
	Message *wireMessage `json:"message,omitempty"`
	Key     string       `json:"key,omitempty"`
	URL     string       `json:"url,omitempty"`
}

type serverEvent struct {
	Type    string       `json:"type"`
	Message *wireMessage `json:"message,omitempty"`
	Key     string       `json:"key,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type wireMessage struct {
	ID       string    `json:"id,omitempty"`
	Sender   string    `json:"sender"`
	Text     string    `json:"text,omitempty"`
	MediaURL string    `json:"mediaUrl,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	SentAt   time.Time `json:"sentAt,omitempty"`
}

// EncodeNewMessage marshals a resolved message as a broadcast frame.
func EncodeNewMessage(msg models.Message) ([]byte, error) {
	wm := wireMessage{
		ID:     msg.ID,
		Sender: msg.Sender,
		SentAt: msg.CreatedAt,
	}

	switch c := msg.Content.(type) {
	case models.DirectMedia:
		wm.MediaURL = c.URL
		wm.Caption = c.Caption
	case models.TextWithReferences:
		wm.Text = c.Text
	default:
		return nil, fmt.Errorf("unknown message content %T", msg.Content)
	}

	return json.Marshal(serverEvent{Type: "newMessage", Message: &wm})
}

// EncodeUploadRequest marshals the directed frame asking one client to
// upload the blob for key.
func EncodeUploadRequest(key string) []byte {
	b, _ := json.Marshal(serverEvent{Type: "requestBlobUpload", Key: key})
	return b
}

func encodeError(msg string) []byte {
	b, _ := json.Marshal(serverEvent{Type: "error", Error: msg})
	return b
}
