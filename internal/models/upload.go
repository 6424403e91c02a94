package models

import "time"

type Upload struct {
	ID         int       `db:"id" json:"id"`
	MediaKey   string    `db:"media_key" json:"mediaKey"`
	URL        string    `db:"url" json:"url"`
	StoredName string    `db:"stored_name" json:"storedName"`
	Archived   bool      `db:"archived" json:"archived"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
