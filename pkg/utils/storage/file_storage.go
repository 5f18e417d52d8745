package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	imageutil "rentora_backend/pkg/utils/image"
	"rentora_backend/pkg/utils/validation"
)

const (
	DefaultBucketName = "rentora-listing-images"
	DefaultRegion     = "eu-central-1"
)

var s3Client *s3.Client

func bucketName() string {
	if b := os.Getenv("AWS_BUCKET_NAME"); b != "" {
		return b
	}
	return DefaultBucketName
}

func region() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return DefaultRegion
}

func InitStorage() error {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region()),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadListingImage validates and re-encodes an uploaded photo and stores
// it under landlord/listing in S3. Returns the public URL.
func UploadListingImage(file *multipart.FileHeader, landlordID uint, listingID uint) (string, error) {
	if err := validation.ValidateImage(file); err != nil {
		return "", err
	}

	buf, contentType, err := imageutil.ProcessImage(file)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%d/%d/%d_%s",
		landlordID,
		listingID,
		time.Now().Unix(),
		filepath.Base(file.Filename),
	)

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucketName()),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName(), region(), fileName), nil
}

// DeleteListingImage removes the object behind a previously returned URL.
func DeleteListingImage(imageURL string) error {
	parts := strings.Split(imageURL, "/")
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName()),
		Key:    aws.String(key),
	})

	return err
}
