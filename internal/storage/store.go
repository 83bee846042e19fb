package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Object is what the upload endpoint returns. Type is the gallery media type
// ("image" or "video"), empty for other files.
type Object struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

// Store persists uploaded media and returns a public URL for it.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (Object, error)
}

// NewKey builds uploads/<unixMillis>-<uuid><ext>.
func NewKey(now time.Time, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("uploads/%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}

// DetectContentType trusts a declared, specific type and otherwise sniffs the head of the file.
func DetectContentType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(head).String()
}

// KindOf maps a content type to a gallery media type, or "" when unsupported.
func KindOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return ""
	}
}
