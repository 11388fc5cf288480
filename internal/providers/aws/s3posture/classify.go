package s3posture

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
)

// S3 error codes that mean "feature not configured" rather than "call failed".
const (
	ErrCodeNoPublicAccessBlock = "NoSuchPublicAccessBlockConfiguration"
	ErrCodeNoEncryption        = "ServerSideEncryptionConfigurationNotFoundError"
)

// Classifier evaluates the three posture checks for a single bucket.
type Classifier struct {
	client common.S3Client
	logger *zap.Logger
}

// NewClassifier returns a Classifier that queries client. A nil logger
// disables diagnostic logging.
func NewClassifier(client common.S3Client, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{client: client, logger: logger}
}

// Classify runs all three checks for bucket and returns its record. The
// checks are independent; a failure in one does not affect the others.
func (c *Classifier) Classify(ctx context.Context, bucket string) models.BucketRecord {
	return models.BucketRecord{
		Name:              bucket,
		PublicAccessBlock: c.PublicAccessBlock(ctx, bucket),
		Encryption:        c.Encryption(ctx, bucket),
		Versioning:        c.Versioning(ctx, bucket),
	}
}

// PublicAccessBlock returns PASS only when all four public access block flags
// are set. A bucket without a configuration is NOT CONFIGURED; any other
// error is ERROR.
func (c *Classifier) PublicAccessBlock(ctx context.Context, bucket string) models.PublicAccessStatus {
	out, err := c.client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if ErrorCode(err) == ErrCodeNoPublicAccessBlock {
			return models.PublicAccessNotConfigured
		}
		c.logCheckError("public_access_block", bucket, err)
		return models.PublicAccessError
	}
	if allBlocked(out.PublicAccessBlockConfiguration) {
		return models.PublicAccessPass
	}
	return models.PublicAccessFail
}

// Encryption returns ENABLED when the bucket has a default encryption
// configuration.
func (c *Classifier) Encryption(ctx context.Context, bucket string) models.EncryptionStatus {
	_, err := c.client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if ErrorCode(err) == ErrCodeNoEncryption {
			return models.EncryptionNotEnabled
		}
		c.logCheckError("encryption", bucket, err)
		return models.EncryptionError
	}
	return models.EncryptionEnabled
}

// Versioning returns ENABLED only for the exact status "Enabled". Suspended
// and never-enabled buckets are both NOT ENABLED.
func (c *Classifier) Versioning(ctx context.Context, bucket string) models.VersioningStatus {
	out, err := c.client.GetBucketVersioning(ctx, &s3svc.GetBucketVersioningInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		c.logCheckError("versioning", bucket, err)
		return models.VersioningError
	}
	if out.Status == types.BucketVersioningStatusEnabled {
		return models.VersioningEnabled
	}
	return models.VersioningNotEnabled
}

func (c *Classifier) logCheckError(check, bucket string, err error) {
	c.logger.Debug("bucket check failed",
		zap.String("check", check),
		zap.String("bucket", bucket),
		zap.String("error_code", ErrorCode(err)),
		zap.Error(err),
	)
}

// allBlocked reports whether cfg is present and every flag is true.
func allBlocked(cfg *types.PublicAccessBlockConfiguration) bool {
	if cfg == nil {
		return false
	}
	return aws.ToBool(cfg.BlockPublicAcls) &&
		aws.ToBool(cfg.IgnorePublicAcls) &&
		aws.ToBool(cfg.BlockPublicPolicy) &&
		aws.ToBool(cfg.RestrictPublicBuckets)
}

// ErrorCode returns the service error code carried by err, or "" when err is
// not an API error (network failure, cancelled context, ...).
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
