package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todos/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type Client struct {
	api      s3iface.S3API
	bucket   string
	endpoint string
	region   string
	useSSL   bool
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

	// MinIO for local development
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

	client := NewWithAPI(s3.New(sess), cfg)
	if err := client.ensureBucket(); err != nil {
		return nil, err
	}
	return client, nil
}

// NewWithAPI wraps an existing S3 API implementation.
func NewWithAPI(api s3iface.S3API, cfg *config.Config) *Client {
	return &Client{
		api:      api,
		bucket:   cfg.S3BucketName,
		endpoint: cfg.AWSEndpoint,
		region:   cfg.AWSRegion,
		useSSL:   cfg.S3UseSSL != "false",
	}
}

func (c *Client) ensureBucket() error {
	_, err := c.api.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return nil
	}
	_, err = c.api.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil && !strings.Contains(err.Error(), s3.ErrCodeBucketAlreadyOwnedByYou) {
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Upload stores body under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := c.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return c.ObjectURL(key), nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// ObjectURL builds a path-style URL for custom endpoints and a
// virtual-hosted URL for AWS.
func (c *Client) ObjectURL(key string) string {
	if c.endpoint != "" && !strings.Contains(c.endpoint, "amazonaws.com") {
		protocol := "http"
		if c.useSSL {
			protocol = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(c.endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, strings.TrimSuffix(host, "/"), c.bucket, key)
	}

	region := c.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, region, key)
}
