package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root netsender command. Run without a subcommand it
// sends records to IP:port.
func NewRootCmd() *cobra.Command {
	opts := &sendOptions{}

	root := &cobra.Command{
		Use:   "netsender [flags] IP port",
		Short: "Replay records over UDP or TCP at a controlled rate",
		Long: `netsender reads records from files or standard input and sends each one
as a UDP datagram or a TCP write, holding a target events-per-second rate
that can ramp up over time.

Records are newline-terminated lines by default. Use --json to send
brace-balanced JSON objects, or --pcap to replay the transport payloads of
a packet capture.

The rate is START:STEP:MAX:INTERVAL. A bare START holds a fixed rate;
with STEP the target grows by STEP every INTERVAL seconds (default 5)
until it reaches MAX. A START of 0 sends as fast as possible.`,
		Example: `  netsender 127.0.0.1 514 -f /var/log/syslog
  netsender --tcp -j -f 'events-*.json' -r 1000:500:10000:10 10.0.0.5 9000
  cat messages.log | netsender -r 200 -n 10000 127.0.0.1 5140
  netsender --config profile.lua --stats-addr :9090`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 2:
				return nil
			case 0:
				if opts.configPath != "" {
					return nil
				}
			}
			return fmt.Errorf("expected IP and port, got %d argument(s)", len(args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return runSend(cmd, cfg)
		},
	}

	opts.addFlags(root)

	root.AddCommand(
		newListenCmd(),
		newGenerateCmd(),
	)

	return root
}
