package model

import "time"

// Document is the metadata row for one uploaded PDF.
// Description is nil when the user left it blank; it is never an empty string.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	FilePath    string    `json:"file_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UserID      string    `json:"user_id"`
}

// DescriptionOr returns the description or fallback when absent.
func (d Document) DescriptionOr(fallback string) string {
	if d.Description == nil {
		return fallback
	}
	return *d.Description
}
