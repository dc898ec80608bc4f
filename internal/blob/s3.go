// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blob

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// presignTTL bounds how long a resolved URL stays fetchable. Profile pages
// re-resolve on every request, so short is fine.
const presignTTL = 15 * time.Minute

// S3Config holds connection settings for an S3-compatible object store
// (AWS S3 or MinIO).
type S3Config struct {
	Region    string
	Endpoint  string // empty for real AWS
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Store keeps blobs in a single bucket and resolves references to
// presigned GET URLs.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds the S3 client once; callers share the store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, oops.Code("BLOB_CONFIG").Errorf("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, oops.Code("BLOB_CONFIG").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// Store uploads the blob under a freshly generated key.
func (s *S3Store) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	ref := "profiles/" + ulid.MustNew(ulid.Now(), rand.Reader).String() + extensionFor(contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ref),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	return ref, nil
}

// Delete removes the object. S3 deletes are idempotent, so unknown
// references succeed.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	return nil
}

// Resolve returns a presigned GET URL for the reference.
func (s *S3Store) Resolve(ctx context.Context, ref string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	return req.URL, nil
}
