// Command s3check audits the S3 buckets of an AWS account for public access
// blocking, default encryption and versioning, and exports the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pankaj-dahiya-devops/s3check/internal/audit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(reportError(os.Stderr, err))
}

// errUnhealthy signals a failed doctor run whose details were already
// rendered; nothing more is printed for it.
var errUnhealthy = errors.New("environment unhealthy")

// reportError prints the operator diagnostic for err to w and returns the
// process exit code. Fatal audit errors print only their one-line message.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var fatal *audit.FatalError
	switch {
	case errors.Is(err, errUnhealthy):
	case errors.As(err, &fatal):
		fmt.Fprintln(w, fatal.Message)
	default:
		fmt.Fprintf(w, "ERROR: %v\n", err)
	}
	return 1
}
