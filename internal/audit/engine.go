// Package audit drives a posture audit: it resolves the caller identity,
// lists buckets once, classifies each bucket in listing order and assembles
// the resulting PostureReport.
package audit

import (
	"context"
	"fmt"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
)

// Options configures a single audit run. It is the sole input to
// Engine.RunAudit.
type Options struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// Region overrides the profile's region.
	Region string

	// Endpoint and UsePathStyle target an S3-compatible store.
	Endpoint     string
	UsePathStyle bool

	// VerifyIdentity runs STS GetCallerIdentity before listing buckets and
	// aborts the run when it fails.
	VerifyIdentity bool

	// Include limits the audit to bucket names matching any of these globs.
	// Empty audits every bucket.
	Include []string
}

// Reporter receives progress as the audit runs so the caller can stream
// output instead of waiting for the full report.
type Reporter interface {
	// Identity is called once, after a successful identity check.
	Identity(id *models.CallerIdentity)

	// Bucket is called once per bucket, in listing order, right after the
	// bucket is classified.
	Bucket(rec models.BucketRecord)
}

// Engine runs a posture audit and returns the full report.
type Engine interface {
	RunAudit(ctx context.Context, opts Options) (*models.PostureReport, error)
}

// Stage names the step at which a run was aborted.
type Stage string

const (
	StageProfile  Stage = "profile"
	StageIdentity Stage = "identity"
	StageList     Stage = "list_buckets"
	StageExport   Stage = "export"

	// StageInterrupted means ctx was cancelled before the report was
	// written.
	StageInterrupted Stage = "interrupted"
)

// MsgInterrupted is the diagnostic for a cancelled run.
const MsgInterrupted = "ERROR: Audit interrupted."

// Interrupted returns the FatalError for a run whose context ended with
// cause.
func Interrupted(cause error) *FatalError {
	return &FatalError{Stage: StageInterrupted, Message: MsgInterrupted, Err: cause}
}

// FatalError aborts the run. Message is the one-line diagnostic shown to the
// operator; Err carries the underlying cause for logs.
type FatalError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
