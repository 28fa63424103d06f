package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/malshatti44/DA-Studio/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// Uploader archives produced images and returns the URL they are served from.
type Uploader interface {
	Upload(context.Context, UploadParams) (string, error)
}

// FileUploader writes into a local directory served under URLPrefix.
type FileUploader struct {
	Dir       string
	URLPrefix string
}

func NewFileUploader(dir, urlPrefix string) (*FileUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileUploader{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	name := filepath.Base(params.Name)
	log.FromContextOrDiscard(ctx).Info("writing archive file", "file", name, "dir", u.Dir)
	if err := os.WriteFile(filepath.Join(u.Dir, name), params.Data, 0o600); err != nil {
		return "", err
	}
	return u.URLPrefix + "/" + name, nil
}
