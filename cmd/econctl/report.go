package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	indicatorrepo "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/report/domain"
	reportservice "github.com/Gelzieny/remix-of-economic-insight/internal/report/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/producer"
)

var reportMode string

func init() {
	reportCmd.Flags().StringVar(&reportMode, "mode", domain.ModeTest, "test prints only; scheduled also publishes for delivery")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the macroeconomic report and print it as JSON",
	Long: `Build the report from the reference series and print it.
With --mode scheduled the report is also published to the events topic, and the
worker delivers it to every active subscriber.

Examples:
  econctl report
  econctl report --mode scheduled`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	var publisher telemetry.EventEmitter
	kafka := producer.NewKafkaProducer(e.cfg.KafkaBrokersList(), e.cfg.EventsTopic)
	if kafka != nil {
		defer kafka.Close()
		publisher = kafka
	}
	svc := reportservice.NewService(indicatorrepo.NewPostgresRepository(e.db), publisher, e.logger)
	report, err := svc.Generate(ctx, reportMode)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

