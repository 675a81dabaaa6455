package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/netsender/internal/config"
	"github.com/SmitUplenchwar2687/netsender/internal/framing"
)

type sendOptions struct {
	configPath string

	tcp      bool
	bind     bool
	bindAddr string

	files       []string
	json        bool
	pcap        bool
	jsonStrings bool
	binary      bool
	strict      bool
	maxLength   int

	rate        string
	delayNanos  int64
	maxMessages int64
	loop        bool
	echo        bool
	hwm         int

	noEPS             bool
	debug             bool
	statsAddr         string
	statsFile         string
	statsRedis        string
	statsRedisChannel string
}

func (o *sendOptions) addFlags(cmd *cobra.Command) {
	defaults := config.Default()

	cmd.Flags().StringVar(&o.configPath, "config", "", "JSON or Lua profile; explicit flags override it")

	cmd.Flags().BoolVar(&o.tcp, "tcp", false, "send over TCP instead of UDP")
	cmd.Flags().BoolVarP(&o.bind, "bind", "b", false, "bind the local socket before sending")
	cmd.Flags().StringVar(&o.bindAddr, "bind-addr", defaults.Target.BindAddr, "local address used with --bind")

	cmd.Flags().StringArrayVarP(&o.files, "file", "f", nil, "input file or glob, repeatable (default standard input)")
	cmd.Flags().BoolVarP(&o.json, "json", "j", false, "frame input as JSON objects")
	cmd.Flags().BoolVar(&o.pcap, "pcap", false, "replay transport payloads from a pcap or pcapng capture")
	cmd.Flags().BoolVar(&o.jsonStrings, "json-strings", false, "ignore braces inside JSON string literals")
	cmd.Flags().BoolVar(&o.binary, "binary", false, "validate line bytes and drop disallowed characters")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "stop on the first disallowed byte (with --binary)")
	cmd.Flags().IntVarP(&o.maxLength, "max-length", "m", defaults.Input.MaxLength, "maximum record length in bytes")

	cmd.Flags().StringVarP(&o.rate, "rate", "r", "", "target EPS as START[:STEP[:MAX[:INTERVAL]]]")
	cmd.Flags().Int64VarP(&o.delayNanos, "delay", "s", 0, "nanoseconds to sleep after each record")
	cmd.Flags().Int64VarP(&o.maxMessages, "max-messages", "n", 0, "stop after this many records (0 = no limit)")
	cmd.Flags().BoolVarP(&o.loop, "loop", "l", false, "restart from the first file after the last")
	cmd.Flags().BoolVarP(&o.echo, "echo", "e", false, "mirror sent records to stderr")
	cmd.Flags().IntVarP(&o.hwm, "hwm", "i", defaults.Send.HWM, "send high-water mark (advisory)")

	cmd.Flags().BoolVarP(&o.noEPS, "no-eps", "q", false, "suppress the per-second EPS line")
	cmd.Flags().BoolVarP(&o.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&o.statsAddr, "stats-addr", "", "serve health, metrics and the live dashboard on this address")
	cmd.Flags().StringVar(&o.statsFile, "stats-file", "", "write per-second snapshots as NDJSON to this file")
	cmd.Flags().StringVar(&o.statsRedis, "stats-redis", "", "publish snapshots to the Redis server at host:port")
	cmd.Flags().StringVar(&o.statsRedisChannel, "stats-redis-channel", defaults.Stats.Redis.Channel, "Redis channel for snapshots")
}

// resolve loads the profile, lays explicitly set flags over it and fills the
// target from the positional arguments.
func (o *sendOptions) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if err := o.overrideConfig(cmd, &cfg); err != nil {
		return config.Config{}, err
	}

	if len(args) == 2 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid port %q", args[1])
		}
		cfg.Target.Address = args[0]
		cfg.Target.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (o *sendOptions) overrideConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if o.json && o.pcap {
		return fmt.Errorf("--json and --pcap are mutually exclusive")
	}

	if flags.Changed("tcp") {
		if o.tcp {
			cfg.Target.Protocol = "tcp"
		} else {
			cfg.Target.Protocol = "udp"
		}
	}
	if flags.Changed("bind") {
		cfg.Target.Bind = o.bind
	}
	if flags.Changed("bind-addr") {
		cfg.Target.BindAddr = o.bindAddr
	}

	if flags.Changed("file") {
		cfg.Input.Files = o.files
	}
	switch {
	case flags.Changed("json") && o.json:
		cfg.Input.Format = framing.JSON.String()
	case flags.Changed("pcap") && o.pcap:
		cfg.Input.Format = framing.Pcap.String()
	}
	if flags.Changed("json-strings") {
		cfg.Input.JSONStrings = o.jsonStrings
	}
	if flags.Changed("binary") {
		cfg.Input.Binary = o.binary
	}
	if flags.Changed("strict") {
		cfg.Input.Strict = o.strict
	}
	if flags.Changed("max-length") {
		cfg.Input.MaxLength = o.maxLength
	}

	if flags.Changed("rate") {
		cfg.Send.Rate = o.rate
	}
	if flags.Changed("delay") {
		cfg.Send.Delay = time.Duration(o.delayNanos)
	}
	if flags.Changed("max-messages") {
		cfg.Send.MaxMessages = o.maxMessages
	}
	if flags.Changed("loop") {
		cfg.Send.Loop = o.loop
	}
	if flags.Changed("echo") {
		cfg.Send.Echo = o.echo
	}
	if flags.Changed("hwm") {
		cfg.Send.HWM = o.hwm
	}

	if flags.Changed("no-eps") {
		cfg.Stats.Quiet = o.noEPS
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("stats-addr") {
		cfg.Stats.Addr = o.statsAddr
	}
	if flags.Changed("stats-file") {
		cfg.Stats.File = o.statsFile
	}
	if flags.Changed("stats-redis") {
		cfg.Stats.Redis.Addr = o.statsRedis
	}
	if flags.Changed("stats-redis-channel") {
		cfg.Stats.Redis.Channel = o.statsRedisChannel
	}
	return nil
}
