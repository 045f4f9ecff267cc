package models

import "time"

// DocumentStatus tracks staff review of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// ApplicationDocument is metadata for one document attached to an application.
// The file itself lives at an external URL (cloud drive link or upload).
type ApplicationDocument struct {
	ID            string         `db:"id" json:"id"`
	ApplicationID string         `db:"application_id" json:"application_id"`
	DocumentType  string         `db:"document_type" json:"document_type"`
	DocumentName  string         `db:"document_name" json:"document_name"`
	FileURL       string         `db:"file_url" json:"file_url"`
	Status        DocumentStatus `db:"status" json:"status"`
	UploadedAt    time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// GalleryImage is one image on the public gallery page.
type GalleryImage struct {
	ID        string    `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	Alt       string    `db:"alt" json:"alt"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
