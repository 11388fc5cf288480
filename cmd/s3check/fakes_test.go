package main

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
)

// ── AWS fakes ─────────────────────────────────────────────────────────────────

type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// fakeS3 serves the two-bucket fixture: bucket-a is fully compliant,
// bucket-b has no public access block, no encryption and suspended versioning.
// Like the SDK, every call fails once ctx is done.
type fakeS3 struct {
	listErr error
}

func (f *fakeS3) ListBuckets(ctx context.Context, _ *s3svc.ListBucketsInput, _ ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &s3svc.ListBucketsOutput{Buckets: []types.Bucket{
		{Name: aws.String("bucket-a")},
		{Name: aws.String("bucket-b")},
	}}, nil
}

func (f *fakeS3) GetPublicAccessBlock(ctx context.Context, in *s3svc.GetPublicAccessBlockInput, _ ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if aws.ToString(in.Bucket) != "bucket-a" {
		return nil, &apiError{code: "NoSuchPublicAccessBlockConfiguration"}
	}
	return &s3svc.GetPublicAccessBlockOutput{PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
		BlockPublicAcls:       aws.Bool(true),
		IgnorePublicAcls:      aws.Bool(true),
		BlockPublicPolicy:     aws.Bool(true),
		RestrictPublicBuckets: aws.Bool(true),
	}}, nil
}

func (f *fakeS3) GetBucketEncryption(ctx context.Context, in *s3svc.GetBucketEncryptionInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if aws.ToString(in.Bucket) != "bucket-a" {
		return nil, &apiError{code: "ServerSideEncryptionConfigurationNotFoundError"}
	}
	return &s3svc.GetBucketEncryptionOutput{}, nil
}

func (f *fakeS3) GetBucketVersioning(ctx context.Context, in *s3svc.GetBucketVersioningInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketVersioningOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if aws.ToString(in.Bucket) != "bucket-a" {
		return &s3svc.GetBucketVersioningOutput{Status: types.BucketVersioningStatusSuspended}, nil
	}
	return &s3svc.GetBucketVersioningOutput{Status: types.BucketVersioningStatusEnabled}, nil
}

type mockAWSProvider struct {
	s3          *fakeS3
	profileErr  error
	identityErr error
	lastOpts    common.LoadOptions
}

func (m *mockAWSProvider) LoadProfile(_ context.Context, opts common.LoadOptions) (*common.ProfileConfig, error) {
	m.lastOpts = opts
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return &common.ProfileConfig{
		ProfileName: "default",
		Region:      "us-east-1",
		Clients:     &common.ClientSet{S3: m.s3},
	}, nil
}

func (m *mockAWSProvider) ResolveIdentity(context.Context, *common.ProfileConfig) (*models.CallerIdentity, error) {
	if m.identityErr != nil {
		return nil, m.identityErr
	}
	return &models.CallerIdentity{
		AccountID: "123456789012",
		ARN:       "arn:aws:iam::123456789012:user/auditor",
	}, nil
}

func goodMockAWS() *mockAWSProvider {
	return &mockAWSProvider{s3: &fakeS3{}}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// chdirTemp moves the test into a fresh directory with HOME pointing at it so
// no real config file is picked up, and returns the directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

// useProvider swaps the provider used by check and doctor for the test.
func useProvider(t *testing.T, p common.AWSClientProvider) {
	t.Helper()
	orig := newAWSProvider
	newAWSProvider = func() common.AWSClientProvider { return p }
	t.Cleanup(func() { newAWSProvider = orig })
}
