// Package commands implements the solidtime command-line tool.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/panoramicdata/solidtime-go/config"
	"github.com/panoramicdata/solidtime-go/logger"
	"github.com/panoramicdata/solidtime-go/observability"
	"github.com/panoramicdata/solidtime-go/solidtime"
)

// RootOptions holds flags shared by every subcommand
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// session is what a subcommand needs to talk to the API. It is opened in
// PersistentPreRunE and closed by Run once the command has finished.
type session struct {
	client   *solidtime.Client
	log      logger.Logger
	provider observability.Provider
}

// Run executes the command line in args and flushes telemetry afterwards,
// whether or not the command succeeded.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) (err error) {
	sess := &session{}
	defer func() {
		err = errors.Join(err, sess.close())
	}()

	cmd := newRootCommand(version, sess)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(version string, sess *session) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "solidtime",
		Short: "Command-line access to the Solidtime API",
		Long: `Query the Solidtime time-tracking API.

Configuration is read from the file given with --config and from
SOLIDTIME_* environment variables, e.g. SOLIDTIME_CLIENT_TOKEN.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationOffline] == "true" {
				return nil
			}
			return sess.open(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every request and response")

	cmd.AddCommand(
		NewMeCommand(sess),
		NewProjectsCommand(sess),
		NewVersionCommand(version),
	)

	return cmd
}

// annotationOffline marks commands that run without configuration.
const annotationOffline = "offline"

func (s *session) open(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Verbose {
		cfg.Client.Verbose = true
		cfg.Log.Level = "debug"
	}

	s.log = logger.NewWithWriter(cfg.Log.Level, cfg.Log.Pretty, cmd.ErrOrStderr())

	s.provider, err = observability.NewProvider(&cfg.Observability, s.log,
		observability.WithConsoleWriter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	s.client, err = solidtime.New(cfg, s.log,
		solidtime.WithTracerProvider(s.provider.TracerProvider()),
		solidtime.WithMeterProvider(s.provider.MeterProvider()),
	)
	return err
}

func (s *session) close() error {
	if s.provider == nil {
		return nil
	}
	err := observability.Shutdown(s.provider, observability.DefaultShutdownTimeout)
	s.provider = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
