package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// StorageService handles interactions with the Supabase Storage API. When
// SUPABASE_URL is not configured the service reports itself disabled and
// callers fall back to local uploads/ serving.
type StorageService struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

// NewStorageService creates a new Supabase storage service instance
func NewStorageService() *StorageService {
	baseURL := os.Getenv("SUPABASE_URL")
	serviceKey := os.Getenv("SUPABASE_SERVICE_KEY")
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "gymfit-media"
	}

	if baseURL == "" || serviceKey == "" {
		log.Printf("Supabase storage not configured; object-storage proxy will serve local uploads only")
	}

	return &StorageService{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		bucket:     bucket,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the remote storage backend is configured.
func (s *StorageService) Enabled() bool {
	return s.baseURL != "" && s.serviceKey != ""
}

// Upload stores an object under the given key and returns the object path.
func (s *StorageService) Upload(key string, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("supabase storage is not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("supabase upload error: status %d: %s", resp.StatusCode, string(respBody))
	}

	return s.bucket + "/" + key, nil
}

// Download fetches an object by key and returns its bytes.
func (s *StorageService) Download(key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("supabase storage is not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase download error: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Delete removes an object by key. Failures are non-fatal to callers and
// are expected to be logged, not propagated.
func (s *StorageService) Delete(key string) error {
	if !s.Enabled() {
		return fmt.Errorf("supabase storage is not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, s.bucket)
	payload, err := json.Marshal(map[string][]string{"prefixes": {key}})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodDelete, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("supabase delete error: status %d", resp.StatusCode)
	}
	return nil
}
