package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curbz/skywatch/internal/server"
	"github.com/curbz/skywatch/internal/simulate"
	"github.com/curbz/skywatch/pkg/jsonshape"
	"github.com/curbz/skywatch/pkg/util"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP front door",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := a.queryAPI()
			ops := a.opsAnalyst(api)
			traveler := a.travelerSupport(api, ops)

			srv := server.New(api, ops, traveler, a.cfg.Server.Region, a.log)
			return srv.ListenAndServe(a.cfg.Server.ListenAddr)
		},
	}
}

func opsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ops [region]",
		Short: "Run an operations-mode region analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			region := a.cfg.Server.Region
			if len(args) == 1 {
				region = args[0]
			}

			api := a.queryAPI()
			report := a.opsAnalyst(api).AnalyzeRegion(region)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Region: %s\n", report.Region)
			fmt.Fprintf(out, "Timestamp: %d\n", report.Timestamp)
			a.printer.Fprintf(out, "Total flights: %d\n", report.TotalFlights)
			a.printer.Fprintf(out, "Anomalous flights: %d\n", report.AnomalousFlights)
			fmt.Fprintf(out, "\nAnalysis:\n%s\n", report.Analysis)
			return nil
		},
	}
}

func travelerCommand(a *app) *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "traveler <flight>",
		Short: "Track a flight and optionally ask a question about it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident := strings.TrimSpace(args[0])

			api := a.queryAPI()
			ops := a.opsAnalyst(api)
			traveler := a.travelerSupport(api, ops)

			out := cmd.OutOrStdout()
			report := traveler.TrackFlight(ident)
			fmt.Fprintf(out, "Flight: %s\n\n%s\n", report.FlightID, report.Summary)
			fmt.Fprintf(out, "\n%s\n", traveler.CheckIssues(ident))

			if question != "" {
				fmt.Fprintf(out, "\nQ: %s\nA: %s\n", question, traveler.AnswerQuestion(ident, question))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the flight")
	return cmd
}

func alertsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List active alerts and summarize them",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := a.queryAPI()

			alerts, err := api.ActiveAlerts()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a.printer.Fprintf(out, "%d active alerts\n", len(alerts))
			for _, al := range alerts {
				name := al.Callsign
				if name == "" {
					name = al.ICAO24
				}
				fmt.Fprintf(out, "  %-10s %-28s %s\n", name, al.AnomalyLabel, al.Details)
			}

			fmt.Fprintf(out, "\n%s\n", a.opsAnalyst(api).SummarizeAlerts())
			return nil
		},
	}
}

func inspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the JSON structure of a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := jsonshape.DescribeFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func simulateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Write a simulated region snapshot on a tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := simulate.New(a.cfg.Simulator.OutputFile, a.log)

			// write one snapshot immediately so the store has data before
			// the first tick elapses
			if err := sim.Tick(0); err != nil {
				return err
			}

			stop := make(chan struct{})
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-interrupt
				close(stop)
			}()

			sim.Run(a.cfg.TickInterval(), stop)
			return nil
		},
	}
}

func smokeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Exercise the query service and both roles end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			api := a.queryAPI()

			if os.Getenv(a.cfg.LLM.APIKeyEnv) == "" {
				fmt.Fprintf(out, "WARNING: %s is not set, generation calls will fail\n", a.cfg.LLM.APIKeyEnv)
			}

			// stage 1: query service reachable
			snap, err := api.RegionSnapshot(a.cfg.Server.Region)
			if err != nil {
				return fmt.Errorf("query service check failed: %w", err)
			}
			a.printer.Fprintf(out, "[1] query service OK: %d flights in %s\n", len(snap.Flights), a.cfg.Server.Region)

			// stage 2: operations mode
			ops := a.opsAnalyst(api)
			report := ops.AnalyzeRegion(a.cfg.Server.Region)
			a.printer.Fprintf(out, "[2] ops mode OK: %d flights, %d anomalous\n", report.TotalFlights, report.AnomalousFlights)

			if len(snap.Flights) == 0 {
				fmt.Fprintln(out, "[3] skipped: no flights available for traveler mode")
				return nil
			}

			ident := util.NormalizeIdent(snap.Flights[0].Callsign)
			if ident == "" {
				ident = snap.Flights[0].ICAO24
			}

			// stage 3: traveler mode
			traveler := a.travelerSupport(api, ops)
			tr := traveler.TrackFlight(ident)
			fmt.Fprintf(out, "[3] traveler mode OK: %s\n", tr.FlightID)

			// stage 4: Q&A with the cross-role call
			answer := traveler.AnswerQuestion(ident, "Are there any other flights nearby that are having issues?")
			fmt.Fprintf(out, "[4] cross-role Q&A OK: %d characters\n", len(answer))

			return nil
		},
	}
}
