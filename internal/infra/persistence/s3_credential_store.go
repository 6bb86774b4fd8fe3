package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/spounge-ai/brainstormity/internal/domain"
)

// S3API is the subset of *s3.Client the credential store calls.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3CredentialStore writes one JSON object per token digest under a key prefix.
type S3CredentialStore struct {
	client     S3API
	bucketName string
	prefix     string
	logger     *slog.Logger
}

var _ domain.CredentialStore = (*S3CredentialStore)(nil)

type s3CredentialObject struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	CreatedAt  int64  `json:"created_at"`
}

func NewS3CredentialStore(client S3API, bucketName, prefix string, logger *slog.Logger) *S3CredentialStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3CredentialStore{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
		logger:     logger,
	}
}

func (s *S3CredentialStore) objectKey(tokenHash string) string {
	return s.prefix + tokenHash + ".json"
}

func (s *S3CredentialStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.objectKey(tokenHash)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || apiErrorCode(err) == "NotFound" {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential object from S3: %w", err)
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			s.logger.Error("failed to close S3 object body", "error", err)
		}
	}()

	var obj s3CredentialObject
	if err := json.NewDecoder(output.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode credential object from S3: %w", err)
	}

	id, err := uuid.Parse(obj.ID)
	if err != nil {
		return nil, fmt.Errorf("credential object has invalid id: %w", err)
	}

	return &domain.Credential{
		ID:         id,
		TokenHash:  tokenHash,
		ClientName: domain.ClientIdentity(obj.ClientName),
		CreatedAt:  time.Unix(obj.CreatedAt, 0).UTC(),
	}, nil
}

// Create uses a conditional put so two writers can never register the same digest.
func (s *S3CredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	body, err := json.Marshal(s3CredentialObject{
		ID:         cred.ID.String(),
		ClientName: cred.ClientName.String(),
		CreatedAt:  cred.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential object: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(s.objectKey(cred.TokenHash)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		switch apiErrorCode(err) {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return domain.ErrCredentialExists
		}
		return fmt.Errorf("failed to put credential object to S3: %w", err)
	}
	return nil
}

// Delete relies on S3 treating deletes of missing keys as success.
func (s *S3CredentialStore) Delete(ctx context.Context, tokenHash string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.objectKey(tokenHash)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete credential object from S3: %w", err)
	}
	return nil
}

func (s *S3CredentialStore) Count(ctx context.Context) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(s.prefix),
	})

	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list credential objects in S3: %w", err)
		}
		for _, obj := range page.Contents {
			if strings.HasSuffix(aws.ToString(obj.Key), ".json") {
				total++
			}
		}
	}
	return total, nil
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
