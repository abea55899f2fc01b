package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

type stubAttachmentService struct {
	ports.AttachmentService
	last ports.PresignUploadInput
}

func (s *stubAttachmentService) PresignUpload(ctx context.Context, actor domain.Actor, in ports.PresignUploadInput) (*domain.PresignedURL, error) {
	s.last = in
	return &domain.PresignedURL{
		URL:       "http://localhost:9000/portal-attachments/attachments/project/emp_1/x.pdf?X-Amz-Signature=abc",
		ObjectKey: "attachments/project/emp_1/x.pdf",
		Method:    http.MethodPut,
		ExpiresAt: time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC),
	}, nil
}

func TestAttachmentHandler_Presign(t *testing.T) {
	stub := &stubAttachmentService{}
	body := `{"filename":"brief.pdf","contentType":"application/pdf","size":1024,"scope":"project"}`

	c, rec := newContext(http.MethodPost, "/attachments/presign", body, "emp_1", domain.RoleEmployee)
	if err := NewAttachmentHandler(stub).Presign(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.last.Scope != domain.ScopeProject || stub.last.Size != 1024 {
		t.Fatalf("unexpected input: %+v", stub.last)
	}

	var data presignUploadResponse
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.UploadURL == "" || data.ObjectKey != "attachments/project/emp_1/x.pdf" || data.Method != http.MethodPut {
		t.Fatalf("unexpected response: %+v", data)
	}
}

func TestAttachmentHandler_Presign_Validation(t *testing.T) {
	body := `{"filename":"brief.pdf","contentType":"application/pdf","size":0,"scope":"invoice"}`
	c, _ := newContext(http.MethodPost, "/attachments/presign", body, "emp_1", domain.RoleEmployee)

	var ve *domain.ValidationError
	if err := NewAttachmentHandler(&stubAttachmentService{}).Presign(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields["size"] == "" || ve.Fields["scope"] == "" {
		t.Fatalf("expected size and scope messages, got %+v", ve.Fields)
	}
}
