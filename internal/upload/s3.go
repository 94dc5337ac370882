package upload

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter is the subset of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores assets in a bucket under Prefix and returns
// PublicBaseURL/key.
type S3Uploader struct {
	Client        ObjectPutter
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// NewS3Uploader checks the required settings.
func NewS3Uploader(client ObjectPutter, bucket, prefix, publicBaseURL string) (*S3Uploader, error) {
	if client == nil {
		return nil, errors.New("s3: client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://" + bucket + ".s3.amazonaws.com"
	}
	return &S3Uploader{
		Client:        client,
		Bucket:        bucket,
		Prefix:        strings.Trim(prefix, "/"),
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (u *S3Uploader) key(a Asset) string {
	name := uuid.NewString() + "." + a.Format.Ext()
	if u.Prefix == "" {
		return name
	}
	return path.Join(u.Prefix, name)
}

func (u *S3Uploader) Upload(ctx context.Context, a Asset) (string, error) {
	key := u.key(a)
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(a.ContentType()),
		Body:        bytes.NewReader(a.Data),
	})
	if err != nil {
		return "", err
	}
	return u.PublicBaseURL + "/" + key, nil
}
