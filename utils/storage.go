package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type R2Config struct {
	Bucket       string
	AccessKey    string
	SecretKey    string
	Endpoint     string // https://<account-id>.r2.cloudflarestorage.com
	PublicDomain string
}

func (c R2Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != "" && c.Endpoint != ""
}

// R2Client wraps the S3 client + bucket name.
type R2Client struct {
	S3           *s3.Client
	Bucket       string
	PublicDomain string
}

func NewR2Client(ctx context.Context, c R2Config) (*R2Client, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing R2 settings (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Client{S3: client, Bucket: c.Bucket, PublicDomain: c.PublicDomain}, nil
}

// ExportObjectName builds exports/<yyyy-mm-dd>/<uuid>-<name>.
func ExportObjectName(name string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s-%s", at.UTC().Format(time.DateOnly), uuid.New().String(), name)
}

// UploadExport stores a generated report and returns its public URL.
func (r *R2Client) UploadExport(ctx context.Context, objectName, contentType string, body []byte) (string, error) {
	_, err := r.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.Bucket),
		Key:          aws.String(objectName),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return r.PublicURL(objectName), nil
}

func (r *R2Client) PublicURL(objectName string) string {
	domain := strings.TrimRight(r.PublicDomain, "/")
	return fmt.Sprintf("%s/%s/%s", domain, r.Bucket, objectName)
}
