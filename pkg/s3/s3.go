package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cofeed/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectRef identifies a stored object and the URL it is served from.
type ObjectRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Client struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.S3BucketName,
		baseURL:  publicBaseURL(cfg.AWSEndpoint, cfg.S3UseSSL != "false", cfg.AWSRegion, cfg.S3BucketName),
	}

	// Ensure bucket exists (for MinIO)
	if _, err := client.s3Client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(cfg.S3BucketName)}); err != nil {
		if _, err := client.s3Client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(cfg.S3BucketName)}); err != nil {
			return nil, fmt.Errorf("bucket %s unavailable: %w", cfg.S3BucketName, err)
		}
	}

	return client, nil
}

func (c *Client) PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) (ObjectRef, error) {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return ObjectRef{Key: key, URL: c.baseURL + "/" + key}, nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// publicBaseURL returns the prefix objects are served from: path-style for a
// custom endpoint (MinIO), virtual-hosted style for AWS.
func publicBaseURL(endpoint string, useSSL bool, region, bucket string) string {
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "http"
		if useSSL {
			protocol = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		host = strings.TrimSuffix(host, "/")
		return fmt.Sprintf("%s://%s/%s", protocol, host, bucket)
	}

	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}
