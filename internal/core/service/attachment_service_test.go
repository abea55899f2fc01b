package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

func TestAttachmentService_PresignUpload(t *testing.T) {
	presigner := &stubPresigner{}
	svc := NewAttachmentService(presigner, zerolog.Nop())
	actor := actorOf(clientAcc)

	url, err := svc.PresignUpload(context.Background(), actor, ports.PresignUploadInput{
		Filename:    "Brief.PDF",
		ContentType: "application/pdf",
		Size:        1024,
		Scope:       domain.ScopeRequest,
	})
	if err != nil {
		t.Fatalf("PresignUpload returned error: %v", err)
	}
	prefix := "attachments/request/" + clientAcc.ID + "/"
	if !strings.HasPrefix(url.ObjectKey, prefix) || !strings.HasSuffix(url.ObjectKey, ".pdf") {
		t.Errorf("unexpected key %q", url.ObjectKey)
	}
	if url.Method != "PUT" {
		t.Errorf("expected PUT, got %s", url.Method)
	}
}

func TestAttachmentService_PresignUpload_Rejects(t *testing.T) {
	svc := NewAttachmentService(&stubPresigner{}, zerolog.Nop())
	actor := actorOf(clientAcc)
	ctx := context.Background()

	_, err := svc.PresignUpload(ctx, actor, ports.PresignUploadInput{Filename: "big.zip", Size: domain.MaxAttachmentSize + 1, Scope: domain.ScopeMessage})
	if !errors.Is(err, domain.ErrAttachmentTooLarge) {
		t.Errorf("expected ErrAttachmentTooLarge, got %v", err)
	}
	var verr *domain.ValidationError
	if _, err := svc.PresignUpload(ctx, actor, ports.PresignUploadInput{Filename: "a.txt", Size: 10, Scope: "avatar"}); !errors.As(err, &verr) {
		t.Errorf("expected scope validation error, got %v", err)
	}
	if _, err := svc.PresignUpload(ctx, actor, ports.PresignUploadInput{Filename: "a.txt", Size: 0, Scope: domain.ScopeMessage}); !errors.As(err, &verr) {
		t.Errorf("expected size validation error, got %v", err)
	}
}

func TestAttachmentService_PresignDownload(t *testing.T) {
	presigner := &stubPresigner{}
	svc := NewAttachmentService(presigner, zerolog.Nop())
	actor := actorOf(clientAcc)

	if _, err := svc.PresignDownload(context.Background(), actor, "attachments/message/acc/x.png"); err != nil {
		t.Fatalf("PresignDownload returned error: %v", err)
	}
	for _, key := range []string{"", "secrets/key.pem", "attachments/../secrets/key.pem"} {
		if _, err := svc.PresignDownload(context.Background(), actor, key); err == nil {
			t.Errorf("expected %q to be rejected", key)
		}
	}
}

func TestObjectKey_ExtensionFromContentType(t *testing.T) {
	key := ObjectKey(domain.ScopeMessage, "acc", "screenshot", "image/png")
	if !strings.HasPrefix(key, "attachments/message/acc/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
	if key == ObjectKey(domain.ScopeMessage, "acc", "screenshot", "image/png") {
		t.Errorf("keys must be unique per upload")
	}
}
