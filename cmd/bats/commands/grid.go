package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inferloop/bats/internal/components"
	"github.com/inferloop/bats/pkg/models"
)

type GridOptions struct {
	SeasonalPeriods string
	UseBoxCox       string
	UseTrend        string
	UseDampedTrend  string
	UseARMAErrors   string
}

func NewGridCmd() *cobra.Command {
	opts := &GridOptions{}

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the configuration grid the switches expand to",
		Long: `Show the concrete model configurations a fit run would evaluate,
in the deterministic order used for AIC tie-breaking.`,
		Example: `  # The default search grid
  bats grid

  # What a forced-trend search with a seasonal period looks like
  bats grid --use-trend on --seasonal-periods 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeasonalPeriods, "seasonal-periods", "", "Comma-separated seasonal period lengths")
	cmd.Flags().StringVar(&opts.UseBoxCox, "use-box-cox", "auto", "Box-Cox transformation (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseTrend, "use-trend", "auto", "Trend component (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseDampedTrend, "use-damped-trend", "auto", "Trend damping (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseARMAErrors, "use-arma-errors", "on", "ARMA error correction (auto, on, off)")

	return cmd
}

func runGrid(opts *GridOptions) error {
	switches, err := parseSwitches(opts.UseBoxCox, opts.UseTrend, opts.UseDampedTrend, opts.UseARMAErrors)
	if err != nil {
		return err
	}
	periods, err := parsePeriods(opts.SeasonalPeriods)
	if err != nil {
		return err
	}

	grid, err := components.BuildGrid(switches, periods)
	if err != nil {
		return err
	}

	fmt.Printf("%d configurations:\n\n", len(grid))
	for i, spec := range grid {
		fmt.Printf("%-5d %s\n", i, spec.String())
	}
	return nil
}

func parseSwitches(boxCox, trend, damped, arma string) (models.ComponentSwitches, error) {
	var switches models.ComponentSwitches
	var err error
	if switches.UseBoxCox, err = models.ParseSwitch(boxCox); err != nil {
		return switches, fmt.Errorf("--use-box-cox: %w", err)
	}
	if switches.UseTrend, err = models.ParseSwitch(trend); err != nil {
		return switches, fmt.Errorf("--use-trend: %w", err)
	}
	if switches.UseDampedTrend, err = models.ParseSwitch(damped); err != nil {
		return switches, fmt.Errorf("--use-damped-trend: %w", err)
	}
	if switches.UseARMAErrors, err = models.ParseSwitch(arma); err != nil {
		return switches, fmt.Errorf("--use-arma-errors: %w", err)
	}
	return switches, nil
}
