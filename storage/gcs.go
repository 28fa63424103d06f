package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/malshatti44/DA-Studio/log"
)

type GCSUploader struct {
	cl         *gcs.Client
	projectID  string
	bucketName string
	uploadPath string
}

func NewGCSUploader(ctx context.Context, projectID, bucketName, uploadPath string) (*GCSUploader, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSUploader{
		cl:         client,
		projectID:  projectID,
		bucketName: bucketName,
		uploadPath: uploadPath,
	}, nil
}

// Upload writes the object and returns its public URL.
func (u *GCSUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	objectPath := u.uploadPath + params.Name
	log.FromContextOrDiscard(ctx).Info("uploading to gcs", "bucket", u.bucketName, "object", objectPath)

	wc := u.cl.Bucket(u.bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = params.ContentType
	wc.Metadata = params.Metadata
	if _, err := io.Copy(wc, bytes.NewReader(params.Data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, objectPath), nil
}

func (u *GCSUploader) Shutdown() error {
	return u.cl.Close()
}
