package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/s3check/internal/audit"
	"github.com/pankaj-dahiya-devops/s3check/internal/config"
	"github.com/pankaj-dahiya-devops/s3check/internal/logging"
	"github.com/pankaj-dahiya-devops/s3check/internal/output"
	"github.com/pankaj-dahiya-devops/s3check/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/s3check/internal/version"
)

// newAWSProvider returns the provider used by check and doctor. Tests replace
// it to inject fake clients.
var newAWSProvider = func() common.AWSClientProvider {
	return common.NewDefaultAWSClientProvider()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "s3check",
		Short:         "S3 bucket security posture audit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}

// awsFlagKeys maps the connection flags shared by check and doctor to config
// keys.
var awsFlagKeys = map[string]string{
	"profile":        config.KeyProfile,
	"region":         config.KeyRegion,
	"endpoint":       config.KeyEndpoint,
	"use-path-style": config.KeyUsePathStyle,
}

// checkFlagKeys maps check flag names to config keys.
var checkFlagKeys = map[string]string{
	"output":    config.KeyOutput,
	"format":    config.KeyFormat,
	"include":   config.KeyInclude,
	"log-level": config.KeyLogLevel,
}

func newCheckCmd() *cobra.Command {
	var (
		configFile   string
		skipIdentity bool
		colored      bool
	)
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check public access block, encryption and versioning of every bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("skip-identity") {
				v.Set(config.KeyVerifyIdentity, !skipIdentity)
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.ConfigFile != "" {
				logger.Info("using config file", zap.String("path", cfg.ConfigFile))
			}
			return runCheck(cmd.Context(), newAWSProvider(), cfg, logger, cmd.OutOrStdout(), colored)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./s3check.yaml or ~/.config/s3check/s3check.yaml)")
	flags.String("profile", "", "AWS profile name (default: uses environment / default profile)")
	flags.String("region", "", "AWS region used to sign requests (default: profile region or us-east-1)")
	flags.String("endpoint", "", "Custom S3 endpoint URL for S3-compatible stores")
	flags.Bool("use-path-style", false, "Use path-style bucket addressing")
	flags.StringP("output", "o", "", "Export file path; overwritten on every run (default: "+config.DefaultOutput+", or "+config.DefaultJSONOutput+" with --format json)")
	flags.String("format", config.DefaultFormat, "Export format: csv or json")
	flags.StringSlice("include", nil, "Only audit buckets matching these glob patterns (repeatable)")
	flags.String("log-level", logging.DefaultLevel, "Diagnostic log level written to stderr: debug, info, warn, error")
	flags.BoolVar(&skipIdentity, "skip-identity", false, "Skip the STS caller identity check before listing buckets")
	flags.BoolVar(&colored, "color", false, "Colour status labels with ANSI codes")
	bindFlags(v, flags, awsFlagKeys)
	bindFlags(v, flags, checkFlagKeys)

	return cmd
}

// bindFlags binds every flag in keys to its config key so an explicitly set
// flag overrides env and file values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// runCheck runs the audit with cfg, streams progress to w and writes the
// export file. Fatal failures are returned as *audit.FatalError; the export
// file is only written after every bucket was classified.
func runCheck(
	ctx context.Context,
	provider common.AWSClientProvider,
	cfg *config.Config,
	logger *zap.Logger,
	w io.Writer,
	colored bool,
) error {
	console := output.NewConsoleReporter(w)
	console.Colored = colored
	console.Banner()

	eng := audit.NewDefaultEngine(provider, console, logger)
	report, err := eng.RunAudit(ctx, audit.Options{
		Profile:        cfg.Profile,
		Region:         cfg.Region,
		Endpoint:       cfg.Endpoint,
		UsePathStyle:   cfg.UsePathStyle,
		VerifyIdentity: cfg.VerifyIdentity,
		Include:        cfg.Include,
	})
	if err != nil {
		logger.Debug("audit aborted", zap.Error(err))
		return err
	}

	if err := ctx.Err(); err != nil {
		return audit.Interrupted(err)
	}
	if err := output.WriteReport(cfg.Output, output.Format(cfg.Format), report); err != nil {
		logger.Debug("export failed", zap.String("path", cfg.Output), zap.Error(err))
		return &audit.FatalError{
			Stage:   audit.StageExport,
			Message: fmt.Sprintf("ERROR: Unable to write %s output.", strings.ToUpper(cfg.Format)),
			Err:     err,
		}
	}

	console.Summary(report.Summary)
	console.Exported(cfg.Output)
	return nil
}
