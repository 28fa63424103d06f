package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/malshatti44/DA-Studio/log"
)

type S3Uploader struct {
	Client     *s3.Client
	Bucket     string
	UploadPath string
	// PublicURL is the base the bucket is served from; defaults to the
	// virtual-hosted S3 endpoint.
	PublicURL string
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	key := u.UploadPath + params.Name
	log.FromContextOrDiscard(ctx).Info("uploading to s3",
		"bucket", u.Bucket, "key", key, "content-type", params.ContentType)

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(u.PublicURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", u.Bucket)
	}
	return base + "/" + key, nil
}
