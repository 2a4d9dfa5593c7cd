package model

import "time"

// FileRecord tracks the provenance of one uploaded statement file.
type FileRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
	AccountID  string    `json:"accountId"`
	// TransactionCount is the number of stored transactions that
	// reference this file. Kept in sync on every mutation.
	TransactionCount int   `json:"transactionCount"`
	SizeBytes        int64 `json:"sizeBytes"`
}
