package models

import "time"

// ImportStatus is the lifecycle state of one processing attempt.
type ImportStatus string

const (
	ImportPending ImportStatus = "pending"
	ImportSuccess ImportStatus = "success"
	ImportPartial ImportStatus = "partial"
	ImportFailed  ImportStatus = "failed"
)

// Import records one processing attempt for one source document. Imports
// are never deleted, they form the audit trail. ContentHash is unique
// among successful imports so a byte-identical document is processed once.
type Import struct {
	ID          string
	FileName    string
	ContentHash string
	EmailID     string
	ParserUsed  string
	Status      ImportStatus
	Notes       string
	CreatedAt   time.Time
}

// Finalize moves a pending import to its terminal status.
func (i *Import) Finalize(status ImportStatus, notes string) {
	i.Status = status
	i.Notes = notes
}
