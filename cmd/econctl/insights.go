package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	indicatorrepo "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	indicatorservice "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/service"
	insightrepo "github.com/Gelzieny/remix-of-economic-insight/internal/insight/repository"
	insightservice "github.com/Gelzieny/remix-of-economic-insight/internal/insight/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
)

var (
	refreshUser       string
	refreshIndicators []string
)

func init() {
	insightsRefreshCmd.Flags().StringVar(&refreshUser, "user", "", "user id whose insights are refreshed (required)")
	insightsRefreshCmd.Flags().StringSliceVar(&refreshIndicators, "indicator", nil, "limit to these indicators (repeatable); default all")
	_ = insightsRefreshCmd.MarkFlagRequired("user")
	insightsCmd.AddCommand(insightsRefreshCmd)
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Manage stored insights",
}

var insightsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute a user's rule-based insights",
	Long: `Recompute the stored insight of each indicator from the user's dashboard series.

Examples:
  econctl insights refresh --user 6f1c...
  econctl insights refresh --user 6f1c... --indicator selic --indicator ipca`,
	RunE: runInsightsRefresh,
}

func runInsightsRefresh(cmd *cobra.Command, args []string) error {
	kinds := make([]indicatordomain.Kind, 0, len(refreshIndicators))
	for _, raw := range refreshIndicators {
		k, err := indicatordomain.ParseKind(raw)
		if err != nil {
			return fmt.Errorf("%q: %w", raw, err)
		}
		kinds = append(kinds, k)
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	policy, err := engine.NewOPAEvaluator(ctx, "", e.logger)
	if err != nil {
		return err
	}
	indicators := indicatorservice.NewService(indicatorrepo.NewPostgresRepository(e.db), policy)
	insights := insightservice.NewService(insightrepo.NewPostgresRepository(e.db), indicators, policy, e.logger)
	out, err := insights.Refresh(ctx, refreshUser, kinds)
	if err != nil {
		return err
	}
	for _, g := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
			g.ReferenceDate.Format(indicatordomain.DateLayout), g.Indicator, g.Severity, g.Title)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d insights at %s\n", len(out), time.Now().Format(time.RFC3339))
	return nil
}
