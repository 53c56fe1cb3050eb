package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// S3API часть клиента S3, которой пользуется хранилище
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage хранилище объектов в bucket S3
type S3Storage struct {
	client S3API
	bucket string
}

var _ repositories.ObjectStorage = (*S3Storage)(nil)

// NewS3Storage создает клиент S3 со статическими учетными данными из LVAL
func NewS3Storage(settings *entities.AWSSettings) *S3Storage {
	client := s3.New(s3.Options{
		Region: settings.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		),
	})
	return NewS3StorageWithClient(client, settings.Bucket)
}

// NewS3StorageWithClient создает хранилище поверх готового клиента
func NewS3StorageWithClient(client S3API, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

// Put загружает объект и возвращает URI вида s3://bucket/key
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", s.mapError(err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3Storage) mapError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: bucket S3 %q: %v", entities.ErrBucketNotFound, s.bucket, err)
		case "AccessDenied":
			return fmt.Errorf("%w: проверьте учетные данные и политики bucket %q: %v", entities.ErrStorageAccessDenied, s.bucket, err)
		}
	}
	return fmt.Errorf("ошибка клиента S3 при загрузке в %q: %w", s.bucket, err)
}
