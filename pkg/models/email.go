package models

import "time"

// Email is the record handed over by the mail retrieval collaborator.
// The pipeline only reads AttachmentPath and ParserHint; it never fetches
// or stores raw mail content.
type Email struct {
	ID             string
	Subject        string
	Sender         string
	Date           time.Time
	AttachmentPath string
	ParserHint     string
}
