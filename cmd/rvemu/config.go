package main

import (
	"iter"
	"maps"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration of a run. Command line
// flags override it.
type Config struct {
	MemorySize int               `toml:"memory_size"` // Slots of machine memory.
	StepLimit  int               `toml:"step_limit"`  // Steps before giving up, 0 for no limit.
	Verbose    bool              `toml:"verbose"`     // Trace the assembler and machine.
	Defines    map[string]string `toml:"defines"`     // Extra names for $() expressions.
}

// Load a TOML configuration file over the current settings. Keys missing
// from the file keep their values; unknown keys are errors.
func (conf *Config) Load(path string) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	meta, err := toml.Decode(string(data), conf)
	if err != nil {
		return
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		err = ErrConfigKey(undecoded[0].String())
		return
	}

	return
}

// AllDefines iterates over the configured defines.
func (conf *Config) AllDefines() iter.Seq2[string, string] {
	return maps.All(conf.Defines)
}
