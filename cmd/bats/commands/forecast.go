package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inferloop/bats/internal/forecast"
	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

type ForecastOptions struct {
	ModelFile  string
	Steps      int
	Level      float64
	Format     string
	OutputFile string
}

func NewForecastCmd() *cobra.Command {
	opts := &ForecastOptions{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast from a fitted BATS model",
		Long: `Load a model written by 'bats fit --output' and produce point
forecasts with prediction intervals.`,
		Example: `  # Forecast 24 steps ahead with 95% intervals
  bats forecast --model model.json --steps 24

  # Wider intervals, JSON output
  bats forecast --model model.json --steps 12 --level 0.99 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "", "Fitted model JSON file (required)")
	cmd.Flags().IntVarP(&opts.Steps, "steps", "s", 10, "Forecast horizon in steps")
	cmd.Flags().Float64Var(&opts.Level, "level", 0.95, "Prediction interval confidence level")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "Output format (table, json, csv)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runForecast(opts *ForecastOptions) error {
	model, err := models.LoadModel(opts.ModelFile)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	result, err := forecast.Horizon(model, opts.Steps, opts.Level)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	out := os.Stdout
	if opts.OutputFile != "-" && opts.OutputFile != "" {
		file, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	switch opts.Format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "csv":
		fmt.Fprintln(out, "step,value,lower,upper")
		for _, p := range result.Points {
			fmt.Fprintf(out, "%d,%g,%g,%g\n", p.Step, p.Value, p.Lower, p.Upper)
		}
		return nil
	case "table":
		fmt.Fprintf(out, "Forecast (%s, %.0f%% intervals)\n\n", model.Spec.String(), opts.Level*100)
		fmt.Fprintf(out, "%-6s %-14s %-14s %-14s\n", "Step", "Forecast", "Lower", "Upper")
		for _, p := range result.Points {
			fmt.Fprintf(out, "%-6d %-14.4f %-14.4f %-14.4f\n", p.Step, p.Value, p.Lower, p.Upper)
		}
		return nil
	default:
		return errors.WrapError(errors.ErrInvalidConfiguration,
			errors.ErrorTypeConfiguration, errors.CodeInvalidConfig,
			"unsupported format: "+opts.Format)
	}
}
