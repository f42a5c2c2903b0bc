package domain

import "time"

// Document references a stored file. An empty ApplicationID places the
// document in the public library.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category,omitempty"`
	FilePath      string    `json:"-"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	ApplicationID string    `json:"applicationId,omitempty"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// IsPublic reports whether the document belongs to the shared library.
func (d *Document) IsPublic() bool { return d.ApplicationID == "" }
