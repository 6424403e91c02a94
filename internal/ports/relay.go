package ports

import (
	"github.com/Vovarama1992/mediarelay/internal/models"
)

// UploadRequest asks one specific client to upload the blob for a media key
// referenced by a message it submitted.
type UploadRequest struct {
	ClientID string
	Key      string
}

type Relay interface {
	Submit(clientID string, msg models.Message)
	UploadComplete(key, url string)
	Broadcasts() <-chan models.Message
	UploadRequests() <-chan UploadRequest
}
