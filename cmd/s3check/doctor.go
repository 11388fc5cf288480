package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pankaj-dahiya-devops/s3check/internal/config"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/s3posture"
)

// defaultConfigFile is the config file doctor validates when --config is not
// given.
const defaultConfigFile = "./s3check.yaml"

// DoctorResult is the structured output of s3check doctor. It can be
// serialised to JSON via --format=json or rendered as plain text (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		ARN         string `json:"arn,omitempty"`
		S3Reachable bool   `json:"s3_reachable"`
		BucketCount int    `json:"bucket_count"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Config struct {
		Present bool     `json:"present"`
		Path    string   `json:"path,omitempty"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"config"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			configFile, _ := cmd.Flags().GetString("config")
			opts := resolveLoadOptions(v, configFile)

			result, err := runDoctor(cmd.Context(), newAWSProvider(), cmd.OutOrStdout(), format, opts, configFile)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	cmd.Flags().String("profile", "", "AWS profile to use (default: credential chain)")
	cmd.Flags().String("region", "", "AWS region used to sign requests")
	cmd.Flags().String("endpoint", "", "Custom S3 endpoint URL")
	cmd.Flags().Bool("use-path-style", false, "Use path-style bucket addressing")
	cmd.Flags().String("config", "", "Config file to validate (default: "+defaultConfigFile+")")
	bindFlags(v, cmd.Flags(), awsFlagKeys)
	return cmd
}

// resolveLoadOptions resolves the AWS connection settings through the same
// flag, env and file layering as check. A config file that fails to load
// still leaves flag and env values in v; doctor reports the failure itself.
func resolveLoadOptions(v *viper.Viper, configFile string) common.LoadOptions {
	if cfg, err := config.Load(v, configFile); err == nil {
		return common.LoadOptions{
			Profile:      cfg.Profile,
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.UsePathStyle,
		}
	}
	return common.LoadOptions{
		Profile:      v.GetString(config.KeyProfile),
		Region:       v.GetString(config.KeyRegion),
		Endpoint:     v.GetString(config.KeyEndpoint),
		UsePathStyle: v.GetBool(config.KeyUsePathStyle),
	}
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures (e.g. JSON encode error).
// Callers must inspect result.OverallHealthy to determine whether the
// environment is healthy.
func runDoctor(
	ctx context.Context,
	provider common.AWSClientProvider,
	w io.Writer,
	format string,
	opts common.LoadOptions,
	configFile string,
) (DoctorResult, error) {
	result := collectDoctorResult(ctx, provider, opts, configFile)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering; callers decide how to present the result.
func collectDoctorResult(
	ctx context.Context,
	provider common.AWSClientProvider,
	opts common.LoadOptions,
	configFile string,
) DoctorResult {
	var result DoctorResult

	// AWS: load profile → STS identity → ListBuckets.
	result.AWS.Profile = opts.Profile
	profileCfg, err := provider.LoadProfile(ctx, opts)
	if err != nil {
		result.AWS.Error = err.Error()
	} else if id, err := provider.ResolveIdentity(ctx, profileCfg); err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = id.AccountID
		result.AWS.ARN = id.ARN
		names, err := s3posture.ListBucketNames(ctx, profileCfg.Clients.S3)
		if err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.S3Reachable = true
			result.AWS.BucketCount = len(names)
		}
	}

	// Config: an explicit --config must exist; the default file is optional.
	path := configFile
	if path == "" {
		path = defaultConfigFile
	}
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil || configFile != "":
		result.Config.Present = true
		result.Config.Path = path
		if _, err := config.Load(viper.New(), path); err != nil {
			result.Config.Errors = []string{err.Error()}
		} else {
			result.Config.Valid = true
		}
	case !os.IsNotExist(statErr):
		// Present but unreadable.
		result.Config.Present = true
		result.Config.Path = path
		result.Config.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.AWS.Credentials &&
		result.AWS.S3Reachable &&
		(!result.Config.Present || result.Config.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "STS Identity", "FAIL", result.AWS.Error)
		doctorPrint(w, "S3 ListBuckets", "FAIL", "skipped")
	} else {
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.S3Reachable {
			doctorPrint(w, "S3 ListBuckets", "OK", fmt.Sprintf("%d buckets", result.AWS.BucketCount))
		} else {
			doctorPrint(w, "S3 ListBuckets", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nConfig:")
	if !result.Config.Present {
		doctorPrint(w, "s3check.yaml present", "Not found (optional)", "")
		return
	}
	doctorPrint(w, "Config file", "YES", result.Config.Path)
	if result.Config.Valid {
		doctorPrint(w, "Config valid", "OK", "")
		return
	}
	for _, e := range result.Config.Errors {
		doctorPrint(w, "Config valid", "FAIL", e)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
