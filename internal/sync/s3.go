package sync

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const ndjsonContentType = "application/x-ndjson"

// S3Destination uploads each project's board to its own object in an
// S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string // object key pattern, see ObjectKey
}

// NewS3Destination creates an S3 destination writing to keys built from
// the key pattern. A non-empty endpoint selects path-style addressing, as
// MinIO and most self-hosted stores expect.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 destination: empty bucket")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, bucket: bucket, key: key}, nil
}

// Write uploads the snapshot to the project's object. The project and task
// count travel as object metadata so listings can be read without fetching
// the board.
func (d *S3Destination) Write(ctx context.Context, snap *Snapshot) error {
	key := ObjectKey(d.key, snap.ProjectID)
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snap.Data),
		ContentType: aws.String(ndjsonContentType),
		Metadata: map[string]string{
			"project-id": keySegment(snap.ProjectID),
			"task-count": strconv.Itoa(snap.TaskCount),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put board %s: %w", key, err)
	}
	return nil
}
