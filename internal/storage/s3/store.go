// Package s3 stores resource representations as S3 objects. The object
// key is the identifier path relative to the server's base URL, so the
// bucket layout mirrors the resource hierarchy.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	apperrors "solid-service/pkg/errors"
)

// Config holds the connection settings of the bucket.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	BaseURL         string
}

// Store is an S3-backed ResourceStore and ResourceSet.
type Store struct {
	svc     *s3.S3
	bucket  string
	baseURL string
}

// NewStore creates a Store from static credentials, the way the rest of
// the service configures AWS access.
func NewStore(cfg Config) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{
		svc:     s3.New(sess),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func (s *Store) GetRepresentation(ctx context.Context, id identifier.ResourceIdentifier) (*storage.Representation, error) {
	key, err := s.objectKey(id)
	if err != nil {
		return nil, err
	}

	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, id)
	}

	contentType := storage.ContentTypeTurtle
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return &storage.Representation{
		Identifier:  id,
		ContentType: contentType,
		Data:        out.Body,
	}, nil
}

func (s *Store) SetRepresentation(ctx context.Context, id identifier.ResourceIdentifier, contentType string, data io.Reader) error {
	key, err := s.objectKey(id)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	_, err = s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(raw),
	})
	return err
}

func (s *Store) DeleteResource(ctx context.Context, id identifier.ResourceIdentifier) error {
	key, err := s.objectKey(id)
	if err != nil {
		return err
	}
	_, err = s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapError(err, id)
	}
	return nil
}

func (s *Store) HasResource(ctx context.Context, id identifier.ResourceIdentifier) (bool, error) {
	key, err := s.objectKey(id)
	if err != nil {
		return false, err
	}
	_, err = s.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && isNotFoundCode(aerr.Code()) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) objectKey(id identifier.ResourceIdentifier) (string, error) {
	if !strings.HasPrefix(id.Path, s.baseURL) {
		return "", apperrors.BadRequest(fmt.Sprintf("identifier %s is outside the scope of this server", id.Path))
	}
	return strings.TrimPrefix(id.Path, s.baseURL), nil
}

func mapError(err error, id identifier.ResourceIdentifier) error {
	if aerr, ok := err.(awserr.Error); ok && isNotFoundCode(aerr.Code()) {
		return apperrors.NotFound(fmt.Sprintf("no resource at %s", id.Path))
	}
	return err
}

// HeadObject reports misses as "NotFound" rather than NoSuchKey.
func isNotFoundCode(code string) bool {
	return code == s3.ErrCodeNoSuchKey || code == "NotFound"
}
