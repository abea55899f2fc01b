package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Presigning is a local signing operation, so no bucket needs to exist.
func newTestPresigner(t *testing.T) *Presigner {
	t.Helper()
	p, err := NewPresigner(context.Background(), Config{
		Endpoint:   "http://localhost:9000",
		Region:     "us-east-1",
		Bucket:     "portal-attachments",
		AccessKey:  "minio",
		SecretKey:  "minio-secret",
		PresignTTL: 5 * time.Minute,
	})
	require.NoError(t, err)
	return p
}

func TestPresigner_PresignPut(t *testing.T) {
	p := newTestPresigner(t)

	res, err := p.PresignPut(context.Background(), "attachments/request/acc/file.pdf", "application/pdf", 2048)
	require.NoError(t, err)

	u, err := url.Parse(res.URL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/portal-attachments/attachments/request/acc/file.pdf", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "PUT", res.Method)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), res.ExpiresAt, 5*time.Second)
}

func TestPresigner_PresignGet(t *testing.T) {
	p := newTestPresigner(t)

	res, err := p.PresignGet(context.Background(), "attachments/message/acc/a.png")
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.URL, "X-Amz-Signature="))
	assert.Equal(t, "GET", res.Method)
}

func TestNewPresigner_RequiresBucket(t *testing.T) {
	_, err := NewPresigner(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}
