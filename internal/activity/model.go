package activity

import "time"

// Action identifies what happened to a document.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionDelete   Action = "delete"
	ActionRename   Action = "rename"
	ActionArchive  Action = "archive"
)

// Entry is one row of the activity feed. DocumentName is a snapshot taken at
// record time, so entries stay readable after the document itself is deleted.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Action       Action    `json:"action"`
	DocumentID   string    `json:"documentId,omitempty"`
	DocumentName string    `json:"documentName"`
	CreatedAt    time.Time `json:"createdAt"`
}
