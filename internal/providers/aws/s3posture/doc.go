// Package s3posture lists S3 buckets and classifies each bucket's public
// access block, default encryption and versioning configuration into the
// status labels defined in internal/models.
//
// Every S3 call made here is read-only. Per-bucket check failures never
// propagate: they are converted into a status label at the call site so one
// failing check does not prevent the others from running.
package s3posture
