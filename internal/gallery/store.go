package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// presignAPI is the subset of the S3 presign client used by ObjectStore.
type presignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// deleteAPI is the subset of the S3 client used for object removal.
type deleteAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectStore issues presigned upload and download URLs for gallery images.
// If bucket is empty, all operations are no-ops that return empty URLs.
type ObjectStore struct {
	bucket   string
	presign  presignAPI
	s3Client deleteAPI
	ttl      time.Duration
	logger   *logging.Logger
}

func NewObjectStore(presign presignAPI, s3Client deleteAPI, bucket string, logger *logging.Logger) *ObjectStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ObjectStore{
		bucket:   bucket,
		presign:  presign,
		s3Client: s3Client,
		ttl:      15 * time.Minute,
		logger:   logger,
	}
}

// Enabled returns true if object storage is configured.
func (s *ObjectStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.presign != nil
}

// UploadURL presigns a PUT for an image object.
func (s *ObjectStore) UploadURL(ctx context.Context, objectKey, contentType string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("gallery: presign upload %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// DownloadURL presigns a GET for an image object.
func (s *ObjectStore) DownloadURL(ctx context.Context, objectKey string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("gallery: presign download %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// DeleteObject removes the stored image bytes. Best-effort: the record delete
// has already happened and a dangling object is harmless.
func (s *ObjectStore) DeleteObject(ctx context.Context, objectKey string) {
	if !s.Enabled() || s.s3Client == nil {
		return
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		s.logger.Warn("failed to delete gallery object", "error", err, "object_key", objectKey)
	}
}
