package config

import (
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// LoadLua runs a Lua profile and merges the table it returns over the
// defaults. Keys use the same snake_case names as the JSON format, so a
// profile can compute values, for example reading os.getenv.
func LoadLua(path string) (Config, error) {
	cfg := Default()

	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return cfg, fmt.Errorf("running lua config: %w", err)
	}

	// The script returns its settings table.
	table, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return cfg, fmt.Errorf("lua config %s did not return a table", path)
	}

	var raw rawConfig
	if err := gluamapper.Map(table, &raw); err != nil {
		return cfg, fmt.Errorf("mapping lua config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}
