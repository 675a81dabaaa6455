package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/netsender/internal/config"
	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/generate"
)

func newGenerateCmd() *cobra.Command {
	var (
		output     string
		configPath string
		count      int
		hosts      int
		duration   time.Duration
		pattern    string
		format     string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample record files and config",
		Long: `Generates sample data for testing and experimentation.

Use "generate records" to create a file of synthetic log events.
Use "generate config" to create an example JSON or Lua profile.`,
	}

	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Generate a file of synthetic log events",
		Long: `Creates syslog-style lines or newline-delimited JSON events whose
timestamps follow a pattern.

Patterns:
  steady    Evenly distributed events
  burst     Concentrated bursts with quiet periods
  ramp      Gradually increasing event density`,
		Example: `  netsender generate records --output events.log --count 10000
  netsender generate records --format json --output events.json --pattern burst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := framing.ParseMode(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = "records.log"
			}

			events, err := generate.Events(generate.Options{
				Count:    count,
				Hosts:    hosts,
				Duration: duration,
				Pattern:  pattern,
				Seed:     seed,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating file: %w", err)
			}
			defer f.Close()

			if err := generate.Write(f, events, mode); err != nil {
				return fmt.Errorf("writing records: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d records (%s) to %s\n", len(events), mode, output)
			fmt.Fprintf(out, "  Hosts:    %d\n", hosts)
			fmt.Fprintf(out, "  Duration: %s\n", duration)
			fmt.Fprintf(out, "  Pattern:  %s\n", pattern)
			return nil
		},
	}

	defaults := generate.DefaultOptions()
	recordsCmd.Flags().StringVar(&output, "output", "records.log", "output file path")
	recordsCmd.Flags().IntVar(&count, "count", defaults.Count, "number of events to generate")
	recordsCmd.Flags().IntVar(&hosts, "hosts", defaults.Hosts, "number of distinct hosts")
	recordsCmd.Flags().DurationVar(&duration, "duration", defaults.Duration, "time span covered by the event timestamps")
	recordsCmd.Flags().StringVar(&pattern, "pattern", defaults.Pattern, "timestamp pattern (steady, burst, ramp)")
	recordsCmd.Flags().StringVar(&format, "format", "lines", "record format (lines, json)")
	recordsCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate an example profile",
		Long: `Writes an example profile. A path ending in .lua produces a Lua script,
anything else a JSON file.`,
		Example: `  netsender generate config --output netsender.json
  netsender generate config --output profile.lua`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = "netsender.json"
			}
			if err := config.WriteExample(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated example config at %s\n", configPath)
			return nil
		},
	}

	configCmd.Flags().StringVar(&configPath, "output", "netsender.json", "output file path")

	cmd.AddCommand(recordsCmd, configCmd)
	return cmd
}
