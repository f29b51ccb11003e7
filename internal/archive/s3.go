// Package archive stores finished campaign run reports in S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/propensity-engine/internal/pkg/logger"
	"github.com/ignite/propensity-engine/internal/service/campaign"
)

// ObjectPutter is the subset of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one JSON object per run under
// <prefix>/<campaign id>/<started date>/<run id>.json.
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Archiver wraps an existing client.
func NewS3Archiver(client ObjectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// NewS3ArchiverFromEnv loads the default AWS credential chain for region.
func NewS3ArchiverFromEnv(ctx context.Context, bucket, region, prefix string) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for run archive: %w", err)
	}
	return NewS3Archiver(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Key returns the object key a report is stored under.
func (a *S3Archiver) Key(r *campaign.RunReport) string {
	return path.Join(a.prefix, r.CampaignID, r.StartedAt.UTC().Format("2006-01-02"), r.RunID+".json")
}

// ArchiveRun implements campaign.Archiver.
func (a *S3Archiver) ArchiveRun(ctx context.Context, r *campaign.RunReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}

	key := a.Key(r)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s/%s: %w", a.bucket, key, err)
	}

	logger.Debug("run report archived", "campaign_id", r.CampaignID, "run_id", r.RunID, "key", key, "bytes", len(body))
	return nil
}
