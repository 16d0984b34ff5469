package objectstore

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

// S3Config targets any S3 compatible bucket (AWS, R2, MinIO, Supabase storage).
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
	UsePathStyle    bool
	Logger          *logging.Logger
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client        s3API
	bucket        string
	publicBaseURL string
	logger        *logging.Logger
}

var _ usecase.ObjectStore = (*S3Store)(nil)

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" || strings.TrimSpace(cfg.PublicBaseURL) == "" {
		return nil, crerr.New("object storage requires bucket and public base url")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, crerr.New("object storage requires access key id and secret access key")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "load object storage sdk config")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Store(client, cfg.Bucket, cfg.PublicBaseURL, cfg.Logger)
}

func newS3Store(client s3API, bucket, publicBaseURL string, logger *logging.Logger) (*S3Store, error) {
	base, err := url.Parse(strings.TrimSpace(publicBaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, crerr.Newf("invalid public base url %q", publicBaseURL)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		publicBaseURL: base.String(),
		logger:        logger.Named("objectstore"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (usecase.StoredObject, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return usecase.StoredObject{}, crerr.New("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return usecase.StoredObject{}, crerr.Wrapf(err, "put object key=%s", key)
	}

	publicURL, err := PublicURL(s.publicBaseURL, key)
	if err != nil {
		return usecase.StoredObject{}, err
	}
	s.logger.DebugContext(ctx, "object stored", "key", key, "size", size)
	return usecase.StoredObject{Key: key, URL: publicURL}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return crerr.Wrapf(err, "delete object key=%s", key)
	}
	return nil
}

// PublicURL joins the public base url and an object key.
func PublicURL(baseURL, key string) (string, error) {
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	joined, err := url.JoinPath(baseURL, segments...)
	if err != nil {
		return "", crerr.Wrapf(err, "build public url key=%s", key)
	}
	return joined, nil
}
