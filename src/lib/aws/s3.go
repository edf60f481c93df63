package aws

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"starcall/src/lib"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// VideoStore keeps the videos celebrities deliver.
type VideoStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type S3VideoStore struct {
	client *s3.Client
	bucket string
}

func NewS3VideoStore(client *s3.Client, bucket string) *S3VideoStore {
	return &S3VideoStore{client: client, bucket: bucket}
}

func (s *S3VideoStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return err
	}
	err = s3.NewObjectExistsWaiter(s.client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, s.bucket)
	return nil
}

func (s *S3VideoStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	pre := s3.NewPresignClient(s.client)
	r, err := pre.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = ttl
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return "", err
	}
	return r.URL, nil
}

var videoStore VideoStore

// GetVideoStore returns nil when S3_VIDEOS_BUCKET is not set.
func GetVideoStore() VideoStore {
	if videoStore != nil {
		return videoStore
	}
	bucket := os.Getenv("S3_VIDEOS_BUCKET")
	if bucket == "" {
		return nil
	}
	client := lib.AWSGetS3Client()
	if client == nil {
		return nil
	}
	videoStore = NewS3VideoStore(client, bucket)
	return videoStore
}

func NewVideoStore(v VideoStore) {
	videoStore = v
}

func VideoKey(orderNumber string, revision int) string {
	return fmt.Sprintf("videos/%s/r%d.mp4", orderNumber, revision)
}
