package config

import internalconfig "github.com/SmitUplenchwar2687/netsender/internal/config"

// Config is the top-level configuration for a send run.
type Config = internalconfig.Config

// TargetConfig describes the destination socket.
type TargetConfig = internalconfig.TargetConfig

// InputConfig selects the sources and how they are framed.
type InputConfig = internalconfig.InputConfig

// SendConfig controls pacing and stop conditions.
type SendConfig = internalconfig.SendConfig

// StatsConfig selects where throughput reports go.
type StatsConfig = internalconfig.StatsConfig

// RedisConfig configures the Redis stats sink.
type RedisConfig = internalconfig.RedisConfig

// Default returns a Config with sensible defaults.
func Default() Config {
	return internalconfig.Default()
}

// LoadFile reads a JSON or Lua profile and merges it with defaults.
func LoadFile(path string) (Config, error) {
	return internalconfig.LoadFile(path)
}

// WriteExample writes an example profile to the given path.
func WriteExample(path string) error {
	return internalconfig.WriteExample(path)
}
