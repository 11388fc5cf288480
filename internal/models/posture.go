package models

import "time"

// PublicAccessStatus is the classification of a bucket's public access block
// configuration.
type PublicAccessStatus string

const (
	PublicAccessPass          PublicAccessStatus = "PASS"
	PublicAccessFail          PublicAccessStatus = "FAIL"
	PublicAccessNotConfigured PublicAccessStatus = "NOT CONFIGURED"
	PublicAccessError         PublicAccessStatus = "ERROR"
)

// EncryptionStatus is the classification of a bucket's default server-side
// encryption configuration.
type EncryptionStatus string

const (
	EncryptionEnabled    EncryptionStatus = "ENABLED"
	EncryptionNotEnabled EncryptionStatus = "NOT ENABLED"
	EncryptionError      EncryptionStatus = "ERROR"
)

// VersioningStatus is the classification of a bucket's versioning state.
type VersioningStatus string

const (
	VersioningEnabled    VersioningStatus = "ENABLED"
	VersioningNotEnabled VersioningStatus = "NOT ENABLED"
	VersioningError      VersioningStatus = "ERROR"
)

// BucketRecord is the compliance result for one bucket. It is created once
// per bucket per run and never modified afterwards.
type BucketRecord struct {
	Name              string             `json:"name"`
	PublicAccessBlock PublicAccessStatus `json:"public_access_block"`
	Encryption        EncryptionStatus   `json:"encryption"`
	Versioning        VersioningStatus   `json:"versioning"`
}

// Compliant reports whether all three checks passed.
func (r BucketRecord) Compliant() bool {
	return r.PublicAccessBlock == PublicAccessPass &&
		r.Encryption == EncryptionEnabled &&
		r.Versioning == VersioningEnabled
}

// HasError reports whether any of the three checks could not be evaluated.
func (r BucketRecord) HasError() bool {
	return r.PublicAccessBlock == PublicAccessError ||
		r.Encryption == EncryptionError ||
		r.Versioning == VersioningError
}

// CallerIdentity is the principal the audit runs as. It is displayed on the
// console and included in the JSON report, never in the CSV export.
type CallerIdentity struct {
	AccountID string `json:"account_id"`
	ARN       string `json:"arn"`
	UserID    string `json:"user_id,omitempty"`
}

// PostureSummary aggregates counts across all bucket records.
type PostureSummary struct {
	TotalBuckets          int `json:"total_buckets"`
	CompliantBuckets      int `json:"compliant_buckets"`
	PublicAccessFailures  int `json:"public_access_failures"`
	EncryptionMissing     int `json:"encryption_missing"`
	VersioningMissing     int `json:"versioning_missing"`
	BucketsWithCheckError int `json:"buckets_with_check_error"`
}

// PostureReport is the complete output of one audit run. Buckets are kept in
// the order the listing call returned them.
type PostureReport struct {
	ReportID    string          `json:"report_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Profile     string          `json:"profile"`
	Region      string          `json:"region"`
	Identity    *CallerIdentity `json:"identity,omitempty"`
	Summary     PostureSummary  `json:"summary"`
	Buckets     []BucketRecord  `json:"buckets"`
}

// Summarize computes a PostureSummary from records.
func Summarize(records []BucketRecord) PostureSummary {
	s := PostureSummary{TotalBuckets: len(records)}
	for _, r := range records {
		if r.Compliant() {
			s.CompliantBuckets++
		}
		if r.PublicAccessBlock == PublicAccessFail || r.PublicAccessBlock == PublicAccessNotConfigured {
			s.PublicAccessFailures++
		}
		if r.Encryption == EncryptionNotEnabled {
			s.EncryptionMissing++
		}
		if r.Versioning == VersioningNotEnabled {
			s.VersioningMissing++
		}
		if r.HasError() {
			s.BucketsWithCheckError++
		}
	}
	return s
}
