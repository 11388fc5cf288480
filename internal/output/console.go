package output

import (
	"fmt"
	"io"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiRed     = "\033[0;31m"
	ansiYellow  = "\033[0;33m"
	ansiGreen   = "\033[0;32m"
)

// Banner is printed once at the start of every run.
const Banner = "=== S3 Security Check ==="

// ConsoleReporter streams the human-readable audit output to w. It
// implements audit.Reporter so each bucket is printed as soon as it is
// classified.
type ConsoleReporter struct {
	w io.Writer

	// Colored wraps status labels with ANSI codes. Default false (CI-safe).
	Colored bool
}

// NewConsoleReporter returns a ConsoleReporter writing plain text to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Banner writes the run banner.
func (c *ConsoleReporter) Banner() {
	fmt.Fprintf(c.w, "\n%s\n\n", Banner)
}

// Identity writes the principal and account the audit runs as.
func (c *ConsoleReporter) Identity(id *models.CallerIdentity) {
	fmt.Fprintf(c.w, "Running as: %s\n", id.ARN)
	fmt.Fprintf(c.w, "AWS Account: %s\n\n", id.AccountID)
}

// Bucket writes the four-line block for one bucket followed by a blank line.
func (c *ConsoleReporter) Bucket(rec models.BucketRecord) {
	fmt.Fprintf(c.w, "Bucket: %s\n", rec.Name)
	fmt.Fprintf(c.w, "  Public Access Block: %s\n", c.status(string(rec.PublicAccessBlock)))
	fmt.Fprintf(c.w, "  Encryption: %s\n", c.status(string(rec.Encryption)))
	fmt.Fprintf(c.w, "  Versioning: %s\n\n", c.status(string(rec.Versioning)))
}

// Summary writes the compliant-bucket count and, when any check could not be
// evaluated, how many buckets were affected.
func (c *ConsoleReporter) Summary(s models.PostureSummary) {
	fmt.Fprintf(c.w, "Compliant: %d/%d buckets\n", s.CompliantBuckets, s.TotalBuckets)
	if s.BucketsWithCheckError > 0 {
		fmt.Fprintf(c.w, "Buckets with check errors: %d\n", s.BucketsWithCheckError)
	}
}

// Exported writes the final confirmation line naming the export file.
func (c *ConsoleReporter) Exported(path string) {
	fmt.Fprintf(c.w, "Results exported to %s\n\n", path)
}

func (c *ConsoleReporter) status(label string) string {
	return ColorStatus(label, c.Colored)
}

// ColorStatus wraps a status label with ANSI codes when colored is true.
// When colored is false the label is returned unchanged (CI-safe default).
func ColorStatus(label string, colored bool) string {
	if !colored {
		return label
	}
	switch label {
	case string(models.PublicAccessPass), string(models.EncryptionEnabled):
		return ansiGreen + label + ansiReset
	case string(models.PublicAccessFail):
		return ansiRed + label + ansiReset
	case string(models.PublicAccessNotConfigured), string(models.EncryptionNotEnabled):
		return ansiYellow + label + ansiReset
	case string(models.PublicAccessError):
		return ansiBoldRed + label + ansiReset
	default:
		return label
	}
}
