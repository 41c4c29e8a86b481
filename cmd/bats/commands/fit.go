package commands

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/bats/internal/estimator"
	"github.com/inferloop/bats/internal/ingest"
	"github.com/inferloop/bats/pkg/interfaces"
	"github.com/inferloop/bats/pkg/models"
)

type FitOptions struct {
	Input           string
	SeasonalPeriods string
	UseBoxCox       string
	UseTrend        string
	UseDampedTrend  string
	UseARMAErrors   string
	NJobs           int
	OutputFile      string
	ShowCandidates  bool

	InfluxURL   string
	InfluxToken string
	InfluxOrg   string
	InfluxQuery string
}

func NewFitCmd() *cobra.Command {
	opts := &FitOptions{}

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a BATS model by AIC grid search",
		Long: `Expand the component switches into a grid of model configurations,
fit every configuration and keep the one with the lowest AIC.`,
		Example: `  # Search all components on hourly data with daily and weekly seasonality
  bats fit --input data.csv --seasonal-periods 24,168 --output model.json

  # Force a damped trend, no Box-Cox
  bats fit --input data.csv --use-trend on --use-damped-trend on --use-box-cox off

  # Fit from an InfluxDB query
  bats fit --influx-url http://localhost:8086 --influx-org myorg \
    --influx-query 'from(bucket:"metrics") |> range(start: -30d)'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input CSV file (value column, or timestamp,value)")
	cmd.Flags().StringVar(&opts.SeasonalPeriods, "seasonal-periods", "", "Comma-separated seasonal period lengths (e.g. 12 or 24,168)")
	cmd.Flags().StringVar(&opts.UseBoxCox, "use-box-cox", "auto", "Box-Cox transformation (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseTrend, "use-trend", "auto", "Trend component (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseDampedTrend, "use-damped-trend", "auto", "Trend damping (auto, on, off)")
	cmd.Flags().StringVar(&opts.UseARMAErrors, "use-arma-errors", "on", "ARMA error correction (auto, on, off)")
	cmd.Flags().IntVar(&opts.NJobs, "n-jobs", 0, "Parallel fit workers (0 for all CPU cores)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Write the winning model as JSON to this file")
	cmd.Flags().BoolVar(&opts.ShowCandidates, "show-candidates", true, "Print the per-candidate AIC table")

	cmd.Flags().StringVar(&opts.InfluxURL, "influx-url", "", "InfluxDB URL (reads from InfluxDB instead of a file)")
	cmd.Flags().StringVar(&opts.InfluxToken, "influx-token", "", "InfluxDB auth token")
	cmd.Flags().StringVar(&opts.InfluxOrg, "influx-org", "", "InfluxDB organization")
	cmd.Flags().StringVar(&opts.InfluxQuery, "influx-query", "", "Flux query returning the series")

	return cmd
}

func runFit(opts *FitOptions) error {
	logger := logrus.New()

	series, err := loadSeries(opts, logger)
	if err != nil {
		return err
	}

	estOpts, err := buildEstimatorOptions(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Fitting BATS models...\n")
	fmt.Printf("Observations: %d\n", series.Len())
	if len(estOpts.SeasonalPeriods) > 0 {
		fmt.Printf("Seasonal periods: %v\n", estOpts.SeasonalPeriods)
	}

	outcome, err := estimator.New(estOpts, logger).Fit(context.Background(), series)
	if err != nil {
		return fmt.Errorf("model search failed: %w", err)
	}

	if opts.ShowCandidates {
		printCandidateTable(outcome.Candidates)
	}

	best := outcome.Best
	fmt.Printf("\nSelected model: %s\n", best.Spec.String())
	fmt.Printf("AIC: %.4f\n", best.AIC)
	fmt.Printf("Log-likelihood: %.4f\n", best.Model.LogLikelihood)
	if best.Spec.UseBoxCox {
		fmt.Printf("Box-Cox lambda: %.4f\n", best.Model.Lambda)
	}

	if opts.OutputFile != "" {
		if err := models.SaveModel(opts.OutputFile, best.Model); err != nil {
			return fmt.Errorf("failed to write model: %w", err)
		}
		fmt.Printf("Model written to %s\n", opts.OutputFile)
	}
	return nil
}

func loadSeries(opts *FitOptions, logger *logrus.Logger) (*models.TimeSeries, error) {
	ctx := context.Background()

	if opts.InfluxURL != "" {
		reader, err := ingest.NewInfluxReader(&ingest.InfluxConfig{
			URL:          opts.InfluxURL,
			Token:        opts.InfluxToken,
			Organization: opts.InfluxOrg,
		}, opts.InfluxQuery, logger)
		if err != nil {
			return nil, err
		}
		if err := reader.Connect(ctx); err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.Read(ctx)
	}

	if opts.Input == "" {
		return nil, fmt.Errorf("either --input or --influx-url is required")
	}
	var reader interfaces.SeriesReader = ingest.NewCSVReader(opts.Input)
	return reader.Read(ctx)
}

func buildEstimatorOptions(opts *FitOptions) (estimator.Options, error) {
	estOpts := estimator.DefaultOptions()
	estOpts.NJobs = opts.NJobs

	switches, err := parseSwitches(opts.UseBoxCox, opts.UseTrend, opts.UseDampedTrend, opts.UseARMAErrors)
	if err != nil {
		return estOpts, err
	}
	estOpts.UseBoxCox = switches.UseBoxCox
	estOpts.UseTrend = switches.UseTrend
	estOpts.UseDampedTrend = switches.UseDampedTrend
	estOpts.UseARMAErrors = switches.UseARMAErrors

	if estOpts.SeasonalPeriods, err = parsePeriods(opts.SeasonalPeriods); err != nil {
		return estOpts, err
	}
	return estOpts, nil
}

func parsePeriods(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var periods []int
	for _, field := range strings.Split(spec, ",") {
		period, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid seasonal period %q", field)
		}
		periods = append(periods, period)
	}
	return periods, nil
}

func printCandidateTable(candidates []models.CandidateResult) {
	fmt.Printf("\n%-5s %-45s %-14s %s\n", "#", "Configuration", "AIC", "Status")
	for _, c := range candidates {
		status := "ok"
		aic := fmt.Sprintf("%.4f", c.AIC)
		switch {
		case c.FailureReason != "":
			status = "failed: " + c.FailureReason
			aic = "-"
		case math.IsInf(c.AIC, 1):
			status = "non-finite score"
			aic = "-"
		}
		fmt.Printf("%-5d %-45s %-14s %s\n", c.Index, c.Spec.String(), aic, status)
	}
}
