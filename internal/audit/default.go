package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/s3posture"
)

// Operator-facing diagnostics for each fatal stage.
const (
	msgProfileFailed  = "ERROR: Unable to load AWS configuration."
	msgIdentityFailed = "ERROR: Unable to verify AWS identity. Check credentials or SSO login."
	msgListFailed     = "ERROR: Unable to list S3 buckets."
	msgFilterFailed   = "ERROR: Invalid bucket include pattern."
)

// DefaultEngine is the production implementation of Engine. It runs every
// step sequentially; buckets are classified one at a time in listing order.
type DefaultEngine struct {
	provider common.AWSClientProvider
	reporter Reporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewDefaultEngine constructs a DefaultEngine. reporter and logger may be nil.
func NewDefaultEngine(provider common.AWSClientProvider, reporter Reporter, logger *zap.Logger) *DefaultEngine {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultEngine{
		provider: provider,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// RunAudit implements Engine. Any failure before classification starts is
// returned as a *FatalError; per-bucket check failures are recorded as ERROR
// labels and never abort the run. Cancelling ctx aborts the run with a
// StageInterrupted FatalError and no report.
func (e *DefaultEngine) RunAudit(ctx context.Context, opts Options) (*models.PostureReport, error) {
	profile, err := e.provider.LoadProfile(ctx, common.LoadOptions{
		Profile:      opts.Profile,
		Region:       opts.Region,
		Endpoint:     opts.Endpoint,
		UsePathStyle: opts.UsePathStyle,
	})
	if err != nil {
		return nil, fatal(ctx, StageProfile, msgProfileFailed, err)
	}

	var identity *models.CallerIdentity
	if opts.VerifyIdentity {
		identity, err = e.provider.ResolveIdentity(ctx, profile)
		if err != nil {
			return nil, fatal(ctx, StageIdentity, msgIdentityFailed, err)
		}
		e.logger.Info("resolved caller identity",
			zap.String("account_id", identity.AccountID),
			zap.String("arn", identity.ARN),
		)
		e.reporter.Identity(identity)
	}

	names, err := s3posture.ListBucketNames(ctx, profile.Clients.S3)
	if err != nil {
		return nil, fatal(ctx, StageList, msgListFailed, err)
	}
	listed := len(names)

	names, err = s3posture.FilterBucketNames(names, opts.Include)
	if err != nil {
		return nil, &FatalError{Stage: StageList, Message: msgFilterFailed, Err: err}
	}
	e.logger.Info("listed buckets",
		zap.Int("listed", listed),
		zap.Int("selected", len(names)),
		zap.String("profile", profile.ProfileName),
	)

	classifier := s3posture.NewClassifier(profile.Clients.S3, e.logger)
	records := make([]models.BucketRecord, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, Interrupted(err)
		}
		rec := classifier.Classify(ctx, name)
		// A check cut short by cancellation is not a real ERROR result.
		if err := ctx.Err(); err != nil {
			return nil, Interrupted(err)
		}
		e.reporter.Bucket(rec)
		records = append(records, rec)
	}

	return &models.PostureReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		Profile:     profile.ProfileName,
		Region:      profile.Region,
		Identity:    identity,
		Summary:     models.Summarize(records),
		Buckets:     records,
	}, nil
}

// fatal builds the FatalError for stage, reporting an interruption instead
// when ctx was cancelled.
func fatal(ctx context.Context, stage Stage, msg string, err error) *FatalError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Interrupted(ctxErr)
	}
	return &FatalError{Stage: stage, Message: msg, Err: err}
}

type nopReporter struct{}

func (nopReporter) Identity(*models.CallerIdentity) {}
func (nopReporter) Bucket(models.BucketRecord)      {}
