// Command fraudd runs the fraud detection service and its companion tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/frauddetect/internal/infrastructure/config"
	"github.com/bibbank/frauddetect/pkg/observability"
)

const serviceName = "frauddetect"

// logsToStderr marks commands whose stdout carries results.
const logsToStderr = "logs-to-stderr"

// app carries the state shared by every subcommand once the root
// pre-run hook has loaded configuration.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:               "fraudd",
		Short:             "Transaction fraud detection service",
		Long:              "fraudd scores transactions through an external model, assesses their risk, records them and raises alerts.",
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newScoreCmd(a),
		newRelayCmd(a),
		newAlertsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	out := cmd.OutOrStdout()
	if _, ok := cmd.Annotations[logsToStderr]; ok {
		out = cmd.ErrOrStderr()
	}
	a.logger = observability.InitLogger(observability.LogConfig{
		Output: out,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}).With("service", serviceName)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
