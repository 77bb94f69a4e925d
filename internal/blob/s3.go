// Package blob содержит хранилище файлов товаров на основе S3-совместимого
// объектного хранилища.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store загружает изображения товаров в бакет и отдаёт публичные ссылки.
type S3Store struct {
	client *s3.Client
	bucket string
	// publicBase — базовый URL для собираемых ссылок. При пустом значении
	// используется стандартный адрес бакета AWS.
	publicBase string
	region     string
}

// S3Config — настройки подключения к объектному хранилищу.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // необязательный адрес для MinIO и подобных
}

// NewS3Store создаёт хранилище с подключением к S3.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}

	store := &S3Store{
		client: s3.NewFromConfig(awsCfg, clientOpts),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}
	if cfg.Endpoint != "" {
		store.publicBase = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return store, nil
}

// Upload сохраняет объект по ключу и возвращает публичную ссылку на него.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	return s.objectURL(key), nil
}

// Delete удаляет объект из бакета. Отсутствие объекта ошибкой не считается.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
