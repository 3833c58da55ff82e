package objectclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3Client(endpoint string) *S3Client {
	cfg := aws.Config{
		Region:      "us-east-2",
		Credentials: credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &S3Client{client: client, region: "us-east-2", bucket: "test-bucket"}
}

// The returned body must stay readable after GetObjectReader returns: the
// ingestion worker drains it long after the call, so no context bound
// inside the method may outlive-cancel the stream.
func TestGetObjectReaderStreamsAfterReturn(t *testing.T) {
	payload := bytes.Repeat([]byte("legal corpus line\n"), 128)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		// trickle the body so a cancelled request context would surface
		for i := 0; i < len(payload); i += 256 {
			end := i + 256
			if end > len(payload) {
				end = len(payload)
			}
			_, _ = w.Write(payload[i:end])
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	c := newTestS3Client(srv.URL)

	rc, err := c.GetObjectReader(context.Background(), "test-bucket", "corpus/doc-1/file.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGetObjectReaderHonorsCallerContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("unreachable"))
	}))
	defer srv.Close()

	c := newTestS3Client(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetObjectReader(ctx, "test-bucket", "corpus/doc-1/file.txt")
	assert.Error(t, err)
}
