package blob

import (
	"bytes"
	"context"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/serroba/dynamic-qr/internal/links"
)

// Uploader is the subset of manager.Uploader used by S3Store.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads blobs to an S3 bucket.
type S3Store struct {
	uploader  Uploader
	bucket    string
	publicURL string
}

// NewS3Store creates an S3-backed blob store. When publicURL is empty the
// object location reported by S3 is returned; otherwise publicURL + "/" + key,
// which suits buckets fronted by a CDN.
func NewS3Store(uploader Uploader, bucket, publicURL string) *S3Store {
	return &S3Store{
		uploader:  uploader,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// NewS3Uploader wraps client in the multipart-aware upload manager.
func NewS3Uploader(client *s3.Client) *manager.Uploader {
	return manager.NewUploader(client)
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}

	return out.Location, nil
}

// Compile-time check.
var _ links.BlobStore = (*S3Store)(nil)
