package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project. Using narrow
// interfaces instead of the full SDK clients makes mocking in unit tests
// trivial: create a struct that satisfies the interface and return canned data.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the identity check.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// S3Client is the subset of S3 operations used by the posture audit. All of
// them are read-only.
type S3Client interface {
	ListBuckets(
		ctx context.Context,
		params *s3.ListBucketsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)

	GetPublicAccessBlock(
		ctx context.Context,
		params *s3.GetPublicAccessBlockInput,
		optFns ...func(*s3.Options),
	) (*s3.GetPublicAccessBlockOutput, error)

	GetBucketEncryption(
		ctx context.Context,
		params *s3.GetBucketEncryptionInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketEncryptionOutput, error)

	GetBucketVersioning(
		ctx context.Context,
		params *s3.GetBucketVersioningInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketVersioningOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds fully initialised AWS service clients for a given profile.
// All fields are interfaces so they can be replaced with mocks in tests.
type ClientSet struct {
	STS STSClient
	S3  S3Client
}

// ClientFactory creates a ClientSet from an aws.Config and the load options
// that carry S3 endpoint overrides. Swap this in tests to inject mock clients.
type ClientFactory func(cfg aws.Config, opts LoadOptions) *ClientSet

// NewClientSet is the production ClientFactory. It constructs real AWS SDK
// clients from cfg, applying endpoint and path-style overrides to S3 only.
func NewClientSet(cfg aws.Config, opts LoadOptions) *ClientSet {
	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if opts.UsePathStyle {
				o.UsePathStyle = true
			}
		},
	}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}

	return &ClientSet{
		STS: sts.NewFromConfig(cfg),
		S3:  s3.NewFromConfig(cfg, s3Opts...),
	}
}
