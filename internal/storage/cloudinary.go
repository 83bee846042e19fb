package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

// CloudinaryStore performs signed uploads to Cloudinary's auto endpoint.
type CloudinaryStore struct {
	CloudName  string
	APIKey     string
	APISecret  string
	Folder     string
	Endpoint   string
	HTTPClient *http.Client
	Now        func() time.Time
}

func (s CloudinaryStore) endpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return "https://api.cloudinary.com/v1_1/" + s.CloudName + "/auto/upload"
}

// publicID drops the extension; Cloudinary appends the detected format itself.
func (s CloudinaryStore) publicID(key string) string {
	id := strings.TrimSuffix(key, path.Ext(key))
	if s.Folder != "" {
		id = strings.Trim(s.Folder, "/") + "/" + id
	}
	return id
}

// sign follows Cloudinary's rule: sorted params joined by & with the secret appended, SHA-1 hex.
func sign(publicID, timestamp, secret string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte("public_id="+publicID+"&timestamp="+timestamp+secret)))
}

func (s CloudinaryStore) Put(ctx context.Context, key, contentType string, body io.Reader) (Object, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	publicID := s.publicID(key)
	timestamp := strconv.FormatInt(now.Unix(), 10)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"api_key":   s.APIKey,
		"public_id": publicID,
		"timestamp": timestamp,
		"signature": sign(publicID, timestamp, s.APISecret),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return Object{}, err
		}
	}
	part, err := w.CreateFormFile("file", path.Base(key))
	if err != nil {
		return Object{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return Object{}, err
	}
	if err := w.Close(); err != nil {
		return Object{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), &buf)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	res, err := client.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Object{}, fmt.Errorf("failed to read response: %w", err)
	}
	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		PublicID  string `json:"public_id"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Object{}, fmt.Errorf("cloudinary status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out.Error.Message != "" {
		return Object{}, fmt.Errorf("cloudinary: %s", out.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return Object{}, fmt.Errorf("cloudinary status %d", res.StatusCode)
	}
	url := out.SecureURL
	if url == "" {
		url = out.URL
	}
	if url == "" {
		return Object{}, fmt.Errorf("cloudinary: url kosong")
	}
	return Object{URL: url, Path: out.PublicID}, nil
}
