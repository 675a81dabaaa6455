package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/logging"
	"github.com/SmitUplenchwar2687/netsender/internal/receiver"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSubtext = lipgloss.Color("#A49FA5")
	colorText    = lipgloss.Color("#FAFAFA")

	summaryTitleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	summaryKeyStyle   = lipgloss.NewStyle().Foreground(colorSubtext).Width(10)
	summaryValueStyle = lipgloss.NewStyle().Foreground(colorText)
)

var summaryBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// windowsOnly forwards the live EPS line and leaves the summary to the
// styled renderer.
type windowsOnly struct{ stats.Sink }

func (windowsOnly) Final(stats.Summary) error { return nil }

func newListenCmd() *cobra.Command {
	var (
		addr    string
		tcp     bool
		json    bool
		quiet   bool
		debug   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive frames and report the arrival rate",
		Long: `Listens on a UDP or TCP address and counts incoming records, printing
the receive EPS every second and a summary on Ctrl+C.

UDP datagrams are one record each. TCP streams are split into records
by newline, or by brace-balanced JSON objects with --json.`,
		Example: `  netsender listen --addr :5140
  netsender listen --tcp --json --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := transport.UDP
			if tcp {
				kind = transport.TCP
			}
			mode := framing.Lines
			if json {
				mode = framing.JSON
			}

			logger := logging.New(debug, cmd.ErrOrStderr())
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			opts := receiver.Options{
				Kind:    kind,
				Addr:    addr,
				Framing: framing.Options{Mode: mode},
				Sink:    windowsOnly{stats.NewConsole(out, quiet)},
				Logger:  logger,
			}
			if verbose {
				opts.OnRecord = func(rec []byte) {
					fmt.Fprintln(cmd.ErrOrStderr(), strings.TrimRight(string(rec), "\r\n"))
				}
			}

			r, err := receiver.Listen(ctx, opts)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			fmt.Fprintf(out, "Listening on %s (%s), Ctrl+C to stop\n", r.Addr(), kind)

			summary, err := r.Serve(ctx)
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSummary(kind, r.Addr().String(), summary))
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5140", "address to listen on")
	cmd.Flags().BoolVar(&tcp, "tcp", false, "listen for TCP streams instead of UDP datagrams")
	cmd.Flags().BoolVarP(&json, "json", "j", false, "split TCP streams into JSON objects")
	cmd.Flags().BoolVarP(&quiet, "no-eps", "q", false, "suppress the per-second EPS line")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVarP(&verbose, "echo", "e", false, "print every received record to stderr")

	return cmd
}

func renderSummary(kind transport.Kind, addr string, s stats.Summary) string {
	row := func(key, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			summaryKeyStyle.Render(key),
			summaryValueStyle.Render(value),
		)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		summaryTitleStyle.Render(fmt.Sprintf("Received on %s/%s", kind, addr)),
		"",
		row("Events", fmt.Sprintf("%d", s.Events)),
		row("Dropped", fmt.Sprintf("%d", s.Dropped)),
		row("Seconds", fmt.Sprintf("%.3f", s.Seconds)),
		row("EPS", fmt.Sprintf("%.1f", s.EPS)),
		row("MBPS", fmt.Sprintf("%.3f", s.MBPS)),
		row("MBytes", fmt.Sprintf("%.3f", s.MBytes)),
		row("BPE", fmt.Sprintf("%.1f", s.BytesPerEvent)),
	)
	return summaryBoxStyle.Render(body)
}
