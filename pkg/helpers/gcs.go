package helpers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSImageStore writes avatar images to a Google Cloud Storage bucket and
// hands back the public object URL.
type GCSImageStore struct {
	client *storage.Client
	bucket string
}

func NewGCSImageStore(ctx context.Context, bucket, credentialsFile string) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSImageStore{client: client, bucket: bucket}, nil
}

// Store uploads the image under avatars/<userID>/ and returns its URL.
func (s *GCSImageStore) Store(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	object := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentTypeFor(ext)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object), nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
