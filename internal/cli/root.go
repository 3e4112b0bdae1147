// Package cli wires configuration into the runtime components and exposes
// them as skywatch subcommands.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/curbz/skywatch/internal/agents"
	"github.com/curbz/skywatch/internal/config"
	"github.com/curbz/skywatch/internal/llm"
	"github.com/curbz/skywatch/internal/query"
	"github.com/curbz/skywatch/internal/snapshot"
)

// app carries the loaded configuration and shared constructors between
// subcommands.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *logrus.Logger
	// human-facing number formatting for command output
	printer *message.Printer
}

func newApp() *app {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &app{
		log:     log,
		printer: message.NewPrinter(language.English),
	}
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) snapshotStore() *snapshot.Store {
	var source snapshot.Source
	if a.cfg.Snapshot.URL != "" {
		source = snapshot.NewHTTPSource(a.cfg.Snapshot.URL, a.cfg.FetchTimeout())
	} else {
		source = snapshot.FileSource{Path: a.cfg.Snapshot.DataFile}
	}
	return snapshot.New(source, a.log)
}

// queryAPI returns the in-process service, or the HTTP client when a
// remote query service is configured.
func (a *app) queryAPI() query.API {
	if base := a.cfg.Agents.QueryBaseURL; base != "" {
		return query.NewRemoteService(base, a.cfg.Server.Region, a.log)
	}
	return query.NewService(a.snapshotStore(), a.log)
}

func (a *app) generator() llm.Generator {
	return llm.NewClient(
		a.cfg.LLM.Endpoint,
		os.Getenv(a.cfg.LLM.APIKeyEnv),
		a.cfg.LLM.Model,
		a.cfg.LLM.Temperature,
		a.log,
	)
}

func (a *app) opsAnalyst(api query.API) *agents.OpsAnalyst {
	return agents.NewOpsAnalyst(api, a.generator(), a.cfg.Agents.FlightDetailLimit, a.log)
}

func (a *app) travelerSupport(api query.API, ops *agents.OpsAnalyst) *agents.TravelerSupport {
	return agents.NewTravelerSupport(api, a.generator(), ops, a.log)
}

// RootCommand builds the skywatch command tree.
func RootCommand() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:           "skywatch",
		Short:         "Airspace monitoring assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// inspect works on an arbitrary file and needs no config
			if cmd.Name() == "inspect" {
				return nil
			}
			return a.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "config.yaml", "path to configuration file")

	rootCmd.AddCommand(
		serveCommand(a),
		opsCommand(a),
		travelerCommand(a),
		alertsCommand(a),
		inspectCommand(a),
		simulateCommand(a),
		smokeCommand(a),
	)

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := RootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
