package models

import "time"

// FileScope selects one of the two blob store areas.
type FileScope string

const (
	ScopePublic   FileScope = "public"
	ScopeArchived FileScope = "archived"
)

func (s FileScope) Valid() bool {
	return s == ScopePublic || s == ScopeArchived
}

// StoredFile is one file in the blob store. URL is set only for publicly
// servable files; archived files are not routable.
type StoredFile struct {
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
