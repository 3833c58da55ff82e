package ingestion_engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

var _ DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText converts the file to plain text and emits it line by line as
// fragments. Conversion happens up front (docconv buffers the document
// anyway) so a failed or empty conversion surfaces as an error instead of
// an empty fragment stream.
func (e *DocconvExtractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (<-chan string, error) {
	res, err := docconv.Convert(r, contentType, e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, fmt.Errorf("convert document: no text extracted")
	}

	out := make(chan string, 32)

	go func() {
		defer close(out)

		for _, line := range strings.Split(res.Body, "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
