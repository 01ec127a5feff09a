// Package storage uploads product images to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/prudhivi99/guitar-store/internal/config"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// PresignTTL is how long a presigned download link stays valid.
const PresignTTL = time.Hour

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Uploader stores objects in one bucket and hands out their URLs.
type S3Uploader struct {
	objects  objectAPI
	presign  presignAPI
	endpoint string
	bucket   string
}

// NewS3Uploader builds a path-style client with static credentials.
func NewS3Uploader(cfg config.S3) *S3Uploader {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return &S3Uploader{
		objects:  client,
		presign:  s3.NewPresignClient(client),
		endpoint: endpoint,
		bucket:   cfg.Bucket,
	}
}

// Upload writes body under key and returns the object's public URL.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := u.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", &service.UpstreamError{Service: "object storage", Err: err}
	}
	return u.ObjectURL(key), nil
}

// PresignGet returns a GET link for key valid for PresignTTL.
func (u *S3Uploader) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", &service.UpstreamError{Service: "object storage", Err: err}
	}
	return req.URL, nil
}

// ObjectURL is the durable path-style URL of key.
func (u *S3Uploader) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, url.PathEscape(key))
}
