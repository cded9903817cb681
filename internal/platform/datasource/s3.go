package datasource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures access to an S3-compatible endpoint such as AWS S3 or
// MinIO. Credentials come from the default AWS chain unless
// CredentialsProvider is set.
type S3Config struct {
	Region              string
	Endpoint            string
	PathStyle           bool
	CredentialsProvider aws.CredentialsProvider
	HTTPClient          aws.HTTPClient
}

// S3Source reads a bulk document stored as one S3 object.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%q is not an s3:// uri", uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%q must name a bucket and an object key", uri)
	}
	return u.Host, key, nil
}

func NewS3Source(ctx context.Context, uri string, cfg S3Config) (*S3Source, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.CredentialsProvider != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(cfg.CredentialsProvider))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Load(ctx context.Context) (*Dataset, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Describe(), err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Describe(), err)
	}
	return Decode(data, FormatOf(s.key))
}

func (s *S3Source) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}
