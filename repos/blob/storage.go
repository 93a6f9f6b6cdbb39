package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	firebase "firebase.google.com/go/v4"
	gcs "cloud.google.com/go/storage"

	fieldID "github.com/frc-scouting/scout-sync/pkg/fieldID"
)

// Uploader stores an object and returns the URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type FirebaseStorage struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebaseStorage(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStorage, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase Storage: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucketName, err)
	}
	return &FirebaseStorage{bucket: bucket, name: bucketName}, nil
}

func (s *FirebaseStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload of %s: %w", objectPath, err)
	}
	return PublicURL(s.name, objectPath), nil
}

func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// PhotoPath is where a pit photo is stored: pit/<event>/<team>/<id><ext>.
func PhotoPath(eventCode string, team int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	event := strings.Trim(strings.ReplaceAll(eventCode, "/", ""), ".")
	if event == "" {
		event = "unknown"
	}
	return fmt.Sprintf("pit/%s/%d/%s%s", event, team, fieldID.New(), ext)
}
