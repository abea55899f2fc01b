package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

const attachmentPrefix = "attachments"

// AttachmentService issues presigned URLs for attachment uploads and downloads.
// Object keys are namespaced by scope and uploader.
type AttachmentService struct {
	presigner ports.ObjectPresigner
	log       zerolog.Logger
}

func NewAttachmentService(presigner ports.ObjectPresigner, log zerolog.Logger) *AttachmentService {
	return &AttachmentService{presigner: presigner, log: log}
}

func (s *AttachmentService) PresignUpload(ctx context.Context, actor domain.Actor, in ports.PresignUploadInput) (*domain.PresignedURL, error) {
	if !in.Scope.Valid() {
		return nil, domain.NewValidationError("scope", "scope must be one of: message project request")
	}
	if in.Size <= 0 {
		return nil, domain.NewValidationError("size", "size must be greater than 0")
	}
	if in.Size > domain.MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrAttachmentTooLarge, in.Size, domain.MaxAttachmentSize)
	}

	key := ObjectKey(in.Scope, actor.ID, in.Filename, in.ContentType)
	url, err := s.presigner.PresignPut(ctx, key, in.ContentType, in.Size)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	s.log.Debug().Str("account_id", actor.ID).Str("key", key).Int64("size", in.Size).Msg("upload presigned")
	return url, nil
}

// PresignDownload issues a download URL for any key under the attachment prefix.
func (s *AttachmentService) PresignDownload(ctx context.Context, actor domain.Actor, key string) (*domain.PresignedURL, error) {
	clean := path.Clean(key)
	if key == "" || clean != key || !strings.HasPrefix(clean, attachmentPrefix+"/") {
		return nil, domain.NewValidationError("key", "key must reference an attachment object")
	}

	url, err := s.presigner.PresignGet(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// ObjectKey builds attachments/<scope>/<accountID>/<uuid><ext>. The original file
// name only contributes its lowercased extension; without one the extension is
// taken from the declared content type.
func ObjectKey(scope domain.AttachmentScope, accountID, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if ext == "" && contentType != "" {
		if m := mimetype.Lookup(contentType); m != nil {
			ext = m.Extension()
		}
	}
	return path.Join(attachmentPrefix, string(scope), accountID, uuid.NewString()+ext)
}
