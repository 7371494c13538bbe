package storage

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Endpoint        string
	Region          string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
}

// s3URLs presigns GET URLs for product images kept in an S3-compatible bucket.
type s3URLs struct {
	presignClient *s3.PresignClient
	bucketName    string
	expires       time.Duration
}

func NewS3ImageURLs(ctx context.Context, cfg S3Config) (ImageURLs, error) {
	// Custom endpoints cover MinIO and other S3-compatible stores.
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

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.Printf("S3 image URLs for endpoint %s, bucket %s", cfg.Endpoint, cfg.BucketName)
	return &s3URLs{
		presignClient: s3.NewPresignClient(client),
		bucketName:    cfg.BucketName,
		expires:       DefaultPresignedURLExpiry,
	}, nil
}

func (s *s3URLs) ImageURL(ctx context.Context, imagePath string) (string, error) {
	if imagePath == "" {
		return "", nil
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey(imagePath)),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		log.Printf("ERROR: Failed to presign image '%s': %v", imagePath, err)
		return "", err
	}
	return req.URL, nil
}
