package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
)

// LoadOptions selects the credentials and endpoint used for an audit run.
// The zero value loads the default profile from the standard credential chain.
type LoadOptions struct {
	// Profile is the name from ~/.aws/credentials. Empty means default.
	Profile string

	// Region overrides the profile's region. S3 ListBuckets is global, so the
	// region only affects where requests are signed and sent.
	Region string

	// Endpoint points the S3 client at an S3-compatible store.
	Endpoint string

	// UsePathStyle forces path-style bucket addressing, required by most
	// S3-compatible stores.
	UsePathStyle bool
}

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// Region is the region the clients were constructed for.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds the STS and S3 clients scoped to this profile.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations and resolves the caller
// identity. It is the sole entry point for AWS credential management.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for opts. It does not contact AWS;
	// invalid credentials surface on the first API call.
	LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error)

	// ResolveIdentity calls STS GetCallerIdentity for the credentials in cfg.
	ResolveIdentity(ctx context.Context, cfg *ProfileConfig) (*models.CallerIdentity, error)
}
