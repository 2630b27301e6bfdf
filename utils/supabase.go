package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStore uploads objects to Supabase Storage and resolves public URLs.
// Object paths are bucket-relative, e.g.
//
//	podcasts/<email>/<uuid>.mp3
//	thumbnails/<uuid>.png
type SupabaseStore struct {
	URL    string
	Key    string
	Bucket string
}

func NewSupabaseStoreFromEnv() *SupabaseStore {
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "uploads"
	}
	return &SupabaseStore{
		URL:    strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		Key:    os.Getenv("SUPABASE_KEY"),
		Bucket: bucket,
	}
}

// UploadBytes uploads byte data (e.g. .mp3, .png) under the given object path
// and returns the durable public URL.
func (s *SupabaseStore) UploadBytes(objectPath string, data []byte, contentType string) (string, error) {
	if s.URL == "" || s.Key == "" {
		return "", fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is not configured")
	}

	storageClient := storage.NewClient(s.URL+"/storage/v1", s.Key, nil)

	options := storage.FileOptions{
		ContentType: &contentType,
	}

	_, err := storageClient.UploadFile(s.Bucket, objectPath, bytes.NewBuffer(data), options)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.URL, s.Bucket, objectPath), nil
}

// Delete removes an object by its bucket-relative path. Supabase expects
// Authorization: Bearer <key> plus the apikey header.
func (s *SupabaseStore) Delete(objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if s.URL == "" || s.Key == "" {
		return fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is not configured")
	}

	escaped := url.PathEscape(objectPath)
	// PathEscape encodes '/' too; keep path separators intact
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.URL, s.Bucket, escaped)

	req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.Key)
	req.Header.Set("apikey", s.Key)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase delete failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
