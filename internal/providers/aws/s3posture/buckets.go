package s3posture

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
)

// ListBucketNames returns the names of all buckets visible to the caller, in
// the order the ListBuckets call returned them. Only the first page is read.
func ListBucketNames(ctx context.Context, client common.S3Client) ([]string, error) {
	out, err := client.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list S3 buckets: %w", err)
	}

	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// FilterBucketNames keeps the names matching at least one glob pattern,
// preserving order. An empty pattern list keeps every name.
func FilterBucketNames(names, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return names, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid bucket pattern %q", p)
		}
	}

	kept := make([]string, 0, len(names))
	for _, name := range names {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				kept = append(kept, name)
				break
			}
		}
	}
	return kept, nil
}
