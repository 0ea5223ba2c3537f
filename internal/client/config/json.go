package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. The file may
// be shared with the server, whose keys are ignored here.
type JsonConfig struct {
	Pipeline  *string `json:"pipeline"`
	Detached  *bool   `json:"detached"`
	CLIBinary *string `json:"cli_binary"`
	LogLevel  *string `json:"client_log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Only keys present in the file are applied. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Pipeline != nil {
		cfg.Pipeline = *jc.Pipeline
	}
	if jc.Detached != nil {
		cfg.Detached = *jc.Detached
	}
	if jc.CLIBinary != nil {
		cfg.CLIBinary = *jc.CLIBinary
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
