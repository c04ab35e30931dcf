package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/config"
)

// FileService stores and serves the media assets: full audio, previews,
// covers and certificates. Download returns a streaming reader; callers must
// close it on every exit path.
type FileService interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(fileURL string) (string, error)
}

// NewFileService picks S3/MinIO or local-disk storage from configuration.
func NewFileService(ctx context.Context, cfg config.FileStorageConfig) (FileService, error) {
	if cfg.UseS3 {
		return newS3FileService(ctx, cfg)
	}
	return newLocalFileService(cfg.LocalPath, cfg.LocalBaseURL)
}

type s3FileService struct {
	client         *s3.Client
	bucketName     string
	endpoint       string
	publicEndpoint string
	region         string
}

func newS3FileService(ctx context.Context, cfg config.FileStorageConfig) (FileService, error) {
	if cfg.S3BucketName == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	var awsCfg aws.Config
	var err error

	endpoint := cfg.S3Endpoint
	if endpoint != "" {
		// MinIO / LocalStack configuration
		if !cfg.S3UseSSL && !hasHTTPPrefix(endpoint) {
			endpoint = "http://" + endpoint
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		}
	})

	return &s3FileService{
		client:         client,
		bucketName:     cfg.S3BucketName,
		endpoint:       endpoint,
		publicEndpoint: cfg.S3PublicEndpoint,
		region:         cfg.S3Region,
	}, nil
}

func (s *s3FileService) Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, string, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	return s.publicURL(key), key, nil
}

func (s *s3FileService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read from s3: %w", err)
	}
	return out.Body, nil
}

func (s *s3FileService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3FileService) KeyFromURL(fileURL string) (string, error) {
	marker := "/" + s.bucketName + "/"
	if idx := strings.Index(fileURL, marker); idx >= 0 {
		return fileURL[idx+len(marker):], nil
	}
	return "", fmt.Errorf("url does not match expected format: %s", fileURL)
}

func (s *s3FileService) publicURL(key string) string {
	if s.publicEndpoint != "" {
		prefix := ""
		if !hasHTTPPrefix(s.publicEndpoint) {
			prefix = "http://"
		}
		return fmt.Sprintf("%s%s/%s/%s", prefix, s.publicEndpoint, s.bucketName, key)
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// localFileService keeps assets on disk, mostly for development.
type localFileService struct {
	basePath string
	baseURL  string
}

func newLocalFileService(basePath, baseURL string) (FileService, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localFileService{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *localFileService) Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, string, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
	fullPath := filepath.Join(l.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", "", fmt.Errorf("failed to create directory: %w", err)
	}

	outFile, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, file); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s/%s", l.baseURL, key), key, nil
}

func (l *localFileService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.basePath, key))
}

func (l *localFileService) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(l.basePath, key))
}

func (l *localFileService) KeyFromURL(fileURL string) (string, error) {
	prefix := l.baseURL + "/"
	if strings.HasPrefix(fileURL, prefix) {
		return fileURL[len(prefix):], nil
	}
	return "", fmt.Errorf("url does not match expected format: %s", fileURL)
}
