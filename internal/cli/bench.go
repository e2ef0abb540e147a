package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/curless/curless/http"
	"github.com/curless/curless/internal/bench"
	"github.com/curless/curless/internal/output"
)

var benchCmd = &cobra.Command{
	Use:   "bench URL",
	Short: "Repeat a request and report latency percentiles",
	Long: `Repeat one request sequentially and report status codes, throughput and
latency percentiles. Every iteration builds a fresh request and nothing is
retried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		requests, _ := cmd.Flags().GetInt("requests")
		rps, _ := cmd.Flags().GetFloat64("rate")

		format, err := output.ParseFormat(settings.GetString("format"))
		if err != nil {
			return err
		}

		// surface flag errors once, before the first iteration
		if _, err := buildRequest(cmd, method, args[0]); err != nil {
			return err
		}

		build := func() *http.Request {
			req, _ := buildRequest(cmd, method, args[0])
			return req
		}
		runner := &bench.Runner{
			Requests: requests,
			Rate:     rps,
			Build:    build,
			Logger:   logger,
		}

		report, err := runner.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("benchmark failed: %w", err)
		}

		return writeReport(cmd, format, report)
	},
}

func writeReport(cmd *cobra.Command, format output.OutputFormat, report *bench.Report) error {
	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding report: %w", err)
		}
		write(out, string(data))
	case output.FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("error encoding report: %w", err)
		}
		write(out, string(data))
	default:
		write(out, report.String())
	}
	return nil
}

func init() {
	addRequestFlags(benchCmd)
	benchCmd.Flags().StringP("method", "X", "GET", "HTTP method")
	benchCmd.Flags().IntP("requests", "n", 10, "Number of transactions")
	benchCmd.Flags().Float64("rate", 0, "Maximum transactions per second (0 for unlimited)")
	benchCmd.Flags().StringP("format", "o", "text", "Output format: text, json or yaml")
}
