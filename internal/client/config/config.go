package config

import (
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// Pipelines a front-end can run.
const (
	PipelineEmail    = "email"
	PipelinePlanner  = "planner"
	PipelineResearch = "research"
)

// Pipelines lists the pipelines in menu order.
var Pipelines = []string{PipelineEmail, PipelinePlanner, PipelineResearch}

// Config holds runtime settings for the terminal front-end and the launcher.
//
// Fields:
//   - Pipeline: which pipeline the CLI runs; empty lets the launcher ask.
//   - Detached: launcher starts the CLI without a terminal and returns.
//   - CLIBinary: executable the launcher starts.
//   - LogLevel: level of the diagnostic log written to stderr.
type Config struct {
	Pipeline  string
	Detached  bool
	CLIBinary string
	LogLevel  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Pipeline = ""
	c.Detached = false
	c.CLIBinary = "agentdesk-cli"
	c.LogLevel = "warn"
}

// LoadConfig constructs the launcher Config: defaults, then JSON (if
// present), then command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	return load(launcherFlags)
}

// LoadCLIConfig is LoadConfig for the CLI, which only owns -p and -v.
func LoadCLIConfig() *Config {
	return load(cliFlags)
}

func load(flags []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg, flags)
	return cfg
}

// PipelineOrDefault returns the selected pipeline, email when none is set.
func (c *Config) PipelineOrDefault() string {
	if c.Pipeline == "" {
		return PipelineEmail
	}
	return c.Pipeline
}

// ValidatePipeline reports an unknown pipeline name.
func ValidatePipeline(name string) error {
	for _, p := range Pipelines {
		if p == name {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown pipeline %q (want email, planner or research)", common.ErrConfiguration, name)
}
