package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hanpama/fedgraph"
	"github.com/hanpama/fedgraph/internal/discovery"
	"github.com/hanpama/fedgraph/internal/logging"
)

// Flag and config keys. Nested keys map to FEDGRAPH_LOG_LEVEL and friends.
const (
	keyConfig    = "config"
	keyGateway   = "gateway"
	keyLogLevel  = "log.level"
	keyLogFormat = "log.format"
	keyLogFile   = "log.file"
)

type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "fedgraph",
		Short:         "Build and serve GraphQL federation subgraph schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().String(keyConfig, "", "Config file (default: ./fedgraph.yaml when present)")
	root.PersistentFlags().Bool(keyGateway, false, "Build the gateway view of the schema")
	root.PersistentFlags().String(keyLogLevel, "info", "Log level")
	root.PersistentFlags().String(keyLogFormat, "console", "Log format: console or json")
	root.PersistentFlags().String(keyLogFile, "", "Also write logs to this rotated file")

	root.AddCommand(a.compileSDLCmd(), a.sdlCmd(), a.serveCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v := a.v
	v.SetEnvPrefix("FEDGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if file := v.GetString(keyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fedgraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || v.GetString(keyConfig) != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:  v.GetString(keyLogLevel),
		Format: v.GetString(keyLogFormat),
		File:   v.GetString(keyLogFile),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// readSources reads every schema file in argument order. A directory expands
// to the schema files below it. All unreadable paths are reported at once.
func readSources(ctx context.Context, paths []string) ([]fedgraph.Source, error) {
	var (
		sources []fedgraph.Source
		errs    error
	)
	for _, p := range paths {
		fragments, err := discovery.NewFileSystem(p).Fragments(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, f := range fragments {
			sources = append(sources, fedgraph.NamedText(f.Name, f.SDL))
		}
	}
	if errs == nil && len(sources) == 0 {
		return nil, fmt.Errorf("no schema files in %s", strings.Join(paths, ", "))
	}
	return sources, errs
}

func (a *app) build(ctx context.Context, paths []string, opts ...fedgraph.Option) (*fedgraph.Schema, error) {
	sources, err := readSources(ctx, paths)
	if err != nil {
		return nil, err
	}
	opts = append([]fedgraph.Option{
		fedgraph.WithGateway(a.v.GetBool(keyGateway)),
		fedgraph.WithLogger(a.logger),
	}, opts...)
	return fedgraph.BuildFederationSchema(sources, opts...)
}

// reportBuildError writes every validation message, or the error itself.
func reportBuildError(cmd *cobra.Command, err error) error {
	if violations := fedgraph.Violations(err); len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(cmd.ErrOrStderr(), v)
		}
		return fmt.Errorf("%s: %d violation(s)", fedgraph.ErrorCode(err), len(violations))
	}
	if code := fedgraph.ErrorCode(err); code != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", code, err)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	return err
}
