package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// CloudStore keeps resumes in a Google Cloud Storage bucket.
type CloudStore struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStore creates a client using the default application credentials.
func NewCloudStore(ctx context.Context, bucketName string) (*CloudStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStore{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// Save implements ResumeStore.
func (c *CloudStore) Save(ctx context.Context, objectName, contentType string, data io.Reader) (string, error) {
	if !ValidObjectName(objectName) {
		return "", ErrInvalidObjectName
	}

	wc := c.Client.Bucket(c.BucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to write data to object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close object writer: %w", err)
	}
	return PublicPath(objectName), nil
}

// Open implements ResumeStore.
func (c *CloudStore) Open(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	if !ValidObjectName(objectName) {
		return nil, 0, ErrInvalidObjectName
	}

	reader, err := c.Client.Bucket(c.BucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object: %w", err)
	}
	return reader, reader.Attrs.Size, nil
}

// Close releases the client.
func (c *CloudStore) Close() error {
	return c.Client.Close()
}
