package domain

import (
	"errors"
	"time"
)

// MaxAttachmentSize is the largest upload a presigned URL is issued for.
const MaxAttachmentSize int64 = 25 << 20

// AttachmentScope names the kind of document an upload belongs to.
type AttachmentScope string

const (
	ScopeMessage AttachmentScope = "message"
	ScopeProject AttachmentScope = "project"
	ScopeRequest AttachmentScope = "request"
)

func (s AttachmentScope) Valid() bool {
	switch s {
	case ScopeMessage, ScopeProject, ScopeRequest:
		return true
	}
	return false
}

var ErrAttachmentTooLarge = errors.New("attachment exceeds maximum size")

// Attachment references an object uploaded to the attachment bucket.
type Attachment struct {
	Filename   string     `json:"filename"`
	FileURL    string     `json:"fileUrl"`
	FileType   string     `json:"fileType,omitempty"`
	FileSize   int64      `json:"fileSize,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
	UploadedBy string     `json:"uploadedBy,omitempty"`
}

// PresignedURL is a time-limited URL for a single object.
type PresignedURL struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}
