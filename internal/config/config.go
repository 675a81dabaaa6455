// Package config holds the settings of a send run and loads them from JSON
// or Lua profile files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/ratelimit"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

// Config is the top-level configuration for a run.
type Config struct {
	Target TargetConfig `json:"target"`
	Input  InputConfig  `json:"input"`
	Send   SendConfig   `json:"send"`
	Stats  StatsConfig  `json:"stats"`
	Debug  bool         `json:"debug"`
}

// TargetConfig describes the destination socket.
type TargetConfig struct {
	Address     string        `json:"address"`
	Port        int           `json:"port"`
	Protocol    string        `json:"protocol"` // udp or tcp
	Bind        bool          `json:"bind"`
	BindAddr    string        `json:"bind_addr"`
	SendBuffer  int           `json:"send_buffer"`
	Linger      int           `json:"linger"`
	DialTimeout time.Duration `json:"dial_timeout"`
}

// InputConfig selects the sources and how they are framed.
type InputConfig struct {
	Files       []string `json:"files"` // empty means standard input
	Format      string   `json:"format"`
	Binary      bool     `json:"binary"`
	Strict      bool     `json:"strict"`
	JSONStrings bool     `json:"json_strings"`
	MaxLength   int      `json:"max_length"`
}

// SendConfig controls pacing and stop conditions.
type SendConfig struct {
	Rate        string        `json:"rate"` // START:STEP:MAX:INTERVAL
	Delay       time.Duration `json:"delay"`
	MaxMessages int64         `json:"max_messages"`
	Loop        bool          `json:"loop"`
	Echo        bool          `json:"echo"`
	HWM         int           `json:"hwm"`
}

// StatsConfig selects where throughput reports go.
type StatsConfig struct {
	Quiet bool        `json:"quiet"`
	Addr  string      `json:"addr"` // HTTP stats server, empty to disable
	File  string      `json:"file"` // NDJSON snapshot stream, empty to disable
	Redis RedisConfig `json:"redis"`
}

// RedisConfig is the optional Redis stats sink. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Channel  string `json:"channel"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Target: TargetConfig{
			Protocol:    "udp",
			BindAddr:    transport.DefaultBindAddr,
			SendBuffer:  transport.DefaultSendBuffer,
			Linger:      transport.DefaultLinger,
			DialTimeout: transport.DefaultDialTimeout,
		},
		Input: InputConfig{
			Format:    "lines",
			MaxLength: framing.DefaultMaxLength,
		},
		Send: SendConfig{
			HWM: 10000,
		},
		Stats: StatsConfig{
			Redis: RedisConfig{Channel: stats.DefaultRedisChannel},
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if c.Target.Address == "" {
		return fmt.Errorf("target address is required")
	}
	if c.Target.Port <= 0 || c.Target.Port > 65535 {
		return fmt.Errorf("target port must be between 1 and 65535, got %d", c.Target.Port)
	}
	if _, err := transport.ParseKind(c.Target.Protocol); err != nil {
		return err
	}
	if c.Target.Bind && c.Target.BindAddr == "" {
		return fmt.Errorf("bind_addr is required when bind=true")
	}
	if c.Target.SendBuffer < 0 {
		return fmt.Errorf("send_buffer must be non-negative, got %d", c.Target.SendBuffer)
	}

	mode, err := framing.ParseMode(c.Input.Format)
	if err != nil {
		return err
	}
	if c.Input.Strict && !c.Input.Binary {
		return fmt.Errorf("strict requires binary")
	}
	if c.Input.Binary && mode != framing.Lines {
		return fmt.Errorf("binary scanning only applies to lines format, got %s", mode)
	}
	if c.Input.JSONStrings && mode != framing.JSON {
		return fmt.Errorf("json_strings only applies to json format, got %s", mode)
	}
	if c.Input.MaxLength <= 0 {
		return fmt.Errorf("max_length must be positive, got %d", c.Input.MaxLength)
	}

	if _, err := ratelimit.ParseSchedule(c.Send.Rate); err != nil {
		return fmt.Errorf("rate: %w", err)
	}
	if c.Send.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %s", c.Send.Delay)
	}
	if c.Send.MaxMessages < 0 {
		return fmt.Errorf("max_messages must be non-negative, got %d", c.Send.MaxMessages)
	}
	return nil
}

// TransportConfig returns the socket settings for transport.Open.
func (c Config) TransportConfig() (transport.Config, error) {
	kind, err := transport.ParseKind(c.Target.Protocol)
	if err != nil {
		return transport.Config{}, err
	}
	return transport.Config{
		Kind:        kind,
		Address:     c.Target.Address,
		Port:        c.Target.Port,
		Bind:        c.Target.Bind,
		BindAddr:    c.Target.BindAddr,
		SendBuffer:  c.Target.SendBuffer,
		Linger:      c.Target.Linger,
		DialTimeout: c.Target.DialTimeout,
	}, nil
}

// FramingOptions returns the record framing settings.
func (c Config) FramingOptions() (framing.Options, error) {
	mode, err := framing.ParseMode(c.Input.Format)
	if err != nil {
		return framing.Options{}, err
	}
	return framing.Options{
		Mode:        mode,
		BinarySafe:  c.Input.Binary,
		Strict:      c.Input.Strict,
		StringAware: c.Input.JSONStrings,
		MaxLength:   c.Input.MaxLength,
	}, nil
}

// Schedule parses the rate setting.
func (c Config) Schedule() (ratelimit.Schedule, error) {
	return ratelimit.ParseSchedule(c.Send.Rate)
}

// LoadFile reads a config file and merges it with defaults. Files ending
// in .lua are run as Lua scripts, anything else is parsed as JSON.
// Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return LoadLua(path)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Use a raw intermediate struct to handle duration parsing.
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rawConfig is the file representation with string durations. It is
// shared by the JSON and Lua loaders.
type rawConfig struct {
	Target struct {
		Address     string `json:"address"`
		Port        int    `json:"port"`
		Protocol    string `json:"protocol"`
		Bind        bool   `json:"bind"`
		BindAddr    string `json:"bind_addr"`
		SendBuffer  int    `json:"send_buffer"`
		Linger      int    `json:"linger"`
		DialTimeout string `json:"dial_timeout"`
	} `json:"target"`
	Input struct {
		Files       []string `json:"files"`
		Format      string   `json:"format"`
		Binary      bool     `json:"binary"`
		Strict      bool     `json:"strict"`
		JSONStrings bool     `json:"json_strings"`
		MaxLength   int      `json:"max_length"`
	} `json:"input"`
	Send struct {
		Rate        string `json:"rate"`
		Delay       string `json:"delay"`
		MaxMessages int64  `json:"max_messages"`
		Loop        bool   `json:"loop"`
		Echo        bool   `json:"echo"`
		HWM         int    `json:"hwm"`
	} `json:"send"`
	Stats struct {
		Quiet bool   `json:"quiet"`
		Addr  string `json:"addr"`
		File  string `json:"file"`
		Redis struct {
			Addr     string `json:"addr"`
			Password string `json:"password"`
			DB       int    `json:"db"`
			Channel  string `json:"channel"`
		} `json:"redis"`
	} `json:"stats"`
	Debug bool `json:"debug"`
}

func (c *Config) merge(raw rawConfig) error {
	t := raw.Target
	if t.Address != "" {
		c.Target.Address = t.Address
	}
	if t.Port > 0 {
		c.Target.Port = t.Port
	}
	if t.Protocol != "" {
		c.Target.Protocol = strings.ToLower(t.Protocol)
	}
	if t.Bind {
		c.Target.Bind = true
	}
	if t.BindAddr != "" {
		c.Target.BindAddr = t.BindAddr
	}
	if t.SendBuffer > 0 {
		c.Target.SendBuffer = t.SendBuffer
	}
	if t.Linger > 0 {
		c.Target.Linger = t.Linger
	}
	if t.DialTimeout != "" {
		d, err := time.ParseDuration(t.DialTimeout)
		if err != nil {
			return fmt.Errorf("parsing target.dial_timeout: %w", err)
		}
		c.Target.DialTimeout = d
	}

	in := raw.Input
	if len(in.Files) > 0 {
		c.Input.Files = append([]string(nil), in.Files...)
	}
	if in.Format != "" {
		c.Input.Format = strings.ToLower(in.Format)
	}
	if in.Binary {
		c.Input.Binary = true
	}
	if in.Strict {
		c.Input.Strict = true
	}
	if in.JSONStrings {
		c.Input.JSONStrings = true
	}
	if in.MaxLength > 0 {
		c.Input.MaxLength = in.MaxLength
	}

	s := raw.Send
	if s.Rate != "" {
		c.Send.Rate = s.Rate
	}
	if s.Delay != "" {
		d, err := time.ParseDuration(s.Delay)
		if err != nil {
			return fmt.Errorf("parsing send.delay: %w", err)
		}
		c.Send.Delay = d
	}
	if s.MaxMessages > 0 {
		c.Send.MaxMessages = s.MaxMessages
	}
	if s.Loop {
		c.Send.Loop = true
	}
	if s.Echo {
		c.Send.Echo = true
	}
	if s.HWM > 0 {
		c.Send.HWM = s.HWM
	}

	st := raw.Stats
	if st.Quiet {
		c.Stats.Quiet = true
	}
	if st.Addr != "" {
		c.Stats.Addr = st.Addr
	}
	if st.File != "" {
		c.Stats.File = st.File
	}
	if st.Redis.Addr != "" {
		c.Stats.Redis.Addr = st.Redis.Addr
	}
	if st.Redis.Password != "" {
		c.Stats.Redis.Password = st.Redis.Password
	}
	if st.Redis.DB > 0 {
		c.Stats.Redis.DB = st.Redis.DB
	}
	if st.Redis.Channel != "" {
		c.Stats.Redis.Channel = st.Redis.Channel
	}

	if raw.Debug {
		c.Debug = true
	}
	return nil
}

const exampleJSON = `{
  "target": {
    "address": "127.0.0.1",
    "port": 514,
    "protocol": "udp"
  },
  "input": {
    "files": ["/var/log/events/*.log"],
    "format": "lines",
    "max_length": 64000
  },
  "send": {
    "rate": "1000:500:5000:10",
    "loop": true
  },
  "stats": {
    "addr": ":9100"
  }
}
`

const exampleLua = `-- netsender profile
return {
  target = {
    address = "127.0.0.1",
    port = 514,
    protocol = "udp",
  },
  input = {
    files = { "/var/log/events/*.log" },
    format = "lines",
    max_length = 64000,
  },
  send = {
    rate = "1000:500:5000:10",
    loop = true,
  },
  stats = {
    addr = ":9100",
  },
}
`

// WriteExample writes an example config file to the given path, in Lua
// when the path ends in .lua and in JSON otherwise.
func WriteExample(path string) error {
	example := exampleJSON
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		example = exampleLua
	}
	return os.WriteFile(path, []byte(example), 0o644)
}
