package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// Upload is the result of storing a single image. DeleteToken allows a
// short-window compensating delete when a submission fails after some
// images already uploaded.
type Upload struct {
	URL         string
	DeleteToken string
}

// StorageService stores images on an unsigned upload endpoint
// (Cloudinary-compatible API shape).
type StorageService struct {
	uploadURL string
	preset    string
	client    *http.Client
}

// NewStorageService creates a new StorageService.
func NewStorageService(uploadURL, preset string) *StorageService {
	return &StorageService{
		uploadURL: uploadURL,
		preset:    preset,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL   string `json:"secure_url"`
	DeleteToken string `json:"delete_token"`
}

// Store uploads one file and returns its public URL. Each call is
// independent; callers decide how to treat per-file failures.
func (s *StorageService) Store(filename string, file io.Reader) (Upload, error) {
	if s.uploadURL == "" {
		return Upload{}, fmt.Errorf("upload endpoint not configured")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Upload{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return Upload{}, err
	}
	if err := writer.WriteField("upload_preset", s.preset); err != nil {
		return Upload{}, err
	}
	if err := writer.Close(); err != nil {
		return Upload{}, err
	}

	resp, err := s.client.Post(s.uploadURL, writer.FormDataContentType(), body)
	if err != nil {
		return Upload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Upload{}, fmt.Errorf("storage returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Upload{}, err
	}
	if parsed.SecureURL == "" {
		return Upload{}, fmt.Errorf("storage response missing secure_url")
	}

	return Upload{URL: parsed.SecureURL, DeleteToken: parsed.DeleteToken}, nil
}

// Destroy removes a freshly-uploaded image by its delete token.
// Failures are logged only; cleanup is best-effort.
func (s *StorageService) Destroy(deleteToken string) {
	if s.uploadURL == "" || deleteToken == "" {
		return
	}

	resp, err := s.client.PostForm(s.uploadURL+"/delete_by_token", url.Values{
		"token": {deleteToken},
	})
	if err != nil {
		log.Printf("[Storage] Failed to delete uploaded image: %v", err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Storage] Delete returned status %d", resp.StatusCode)
	}
}
