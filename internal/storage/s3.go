package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pulsefit/coach-app/internal/config"
	"pulsefit/coach-app/internal/domain"
)

// s3Archive implements the PlanArchive interface on an S3-compatible backend.
type s3Archive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
}

// NewS3Archive creates a plan archive backed by the configured bucket.
func NewS3Archive(cfg config.ArchiveConfig) (PlanArchive, error) {
	// Custom resolver for S3-compatible endpoints (MinIO, DigitalOcean Spaces).
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for plan archive: %v", err)
		return nil, err
	}

	// Path-style addressing is required by most S3-compatible services.
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	presignClient := s3.NewPresignClient(s3Client)

	log.Printf("Plan archive initialized for endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	return &s3Archive{
		client:        s3Client,
		presignClient: presignClient,
		bucketName:    cfg.BucketName,
	}, nil
}

// ArchivePlan writes the plan as a JSON object. Keys are date-prefixed per
// user so snapshots sort chronologically in bucket listings.
func (s *s3Archive) ArchivePlan(ctx context.Context, plan *domain.TrainingPlan) (string, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("encode plan snapshot: %w", err)
	}

	objectKey := fmt.Sprintf("plan-archive/%s/%s-%s.json",
		plan.UserID.Hex(), time.Now().UTC().Format("2006-01-02"), uuid.NewString())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Printf("ERROR: Failed to archive plan '%s' to bucket '%s': %v", objectKey, s.bucketName, err)
		return "", err
	}
	return objectKey, nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading a
// snapshot (GET).
func (s *s3Archive) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		log.Printf("ERROR: Failed to generate presigned GET URL for key '%s': %v", objectKey, err)
		return "", err
	}
	return req.URL, nil
}
