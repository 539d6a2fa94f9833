// Package storage implements the external image hosting used for book
// covers.  Images are written to an S3-compatible bucket (AWS S3 in
// production, MinIO in development via a custom endpoint) and served
// through a public base URL.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/bookwormhq/bookworm-api/internal/config"
)

// ImageStore uploads and deletes book cover images on the object store.
type ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string // base URL without trailing slash
}

// NewImageStore builds the S3 client from application config.  Static
// credentials are used so the same code path works against MinIO; when
// S3Endpoint is set it overrides the AWS default endpoint and switches to
// path-style addressing.
func NewImageStore(cfg config.Config) (*ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageStore{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
	}, nil
}

// Upload decodes a base64 image payload (optionally a data URI), writes it
// to the bucket under a fresh key and returns the permanent public URL.
func (s *ImageStore) Upload(ctx context.Context, payload string) (string, error) {
	data, contentType, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	key := newObjectKey()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes the object behind a previously returned URL.  It is a
// no-op error for URLs this store does not own.
func (s *ImageStore) Delete(ctx context.Context, imageURL string) error {
	key, ok := s.keyFromURL(imageURL)
	if !ok {
		return fmt.Errorf("storage: url %q not owned by this store", imageURL)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

// Owns reports whether an image URL points into this store's bucket.
// Externally hosted images (e.g. default avatars) are left alone.
func (s *ImageStore) Owns(imageURL string) bool {
	_, ok := s.keyFromURL(imageURL)
	return ok
}

// Key extracts the object key from a URL owned by this store.  Used when
// publishing cleanup events so the consumer does not re-parse URLs.
func (s *ImageStore) Key(imageURL string) (string, bool) {
	return s.keyFromURL(imageURL)
}

// DeleteKey removes an object by its raw key.  The cleanup consumer uses
// this to retry failed deletions.
func (s *ImageStore) DeleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

func (s *ImageStore) keyFromURL(imageURL string) (string, bool) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(imageURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// newObjectKey produces a collision-free key, partitioned by date so bucket
// listings stay navigable.
func newObjectKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("books/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}

// decodePayload accepts either a bare base64 string or a data URI of the
// form "data:image/png;base64,....." and returns the raw bytes plus the
// content type to store alongside them.
func decodePayload(payload string) ([]byte, string, error) {
	contentType := "image/jpeg"
	if strings.HasPrefix(payload, "data:") {
		meta, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, "", fmt.Errorf("storage: malformed data uri")
		}
		meta = strings.TrimPrefix(meta, "data:")
		ct := meta
		if i := strings.IndexByte(meta, ';'); i >= 0 {
			ct = meta[:i]
		}
		if ct != "" {
			contentType = ct
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("storage: decode image: %w", err)
	}
	return data, contentType, nil
}
