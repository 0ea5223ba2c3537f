package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-g", ":9091", "-b", "postgres", "-d", "db", "-m", "mongodb://mongo:27017",
			"-k", "sk-1", "-s", "secret", "-t", "5", "-f", "tpl.yaml", "-l", "debug",
			"-mock", "-bucket", "transcripts", "-e", "http://endpoint",
		},
			expected: &Config{
				HTTPAddr:                    "127.0.0.1:9090",
				GRPCAddr:                    ":9091",
				StorageBackend:              "postgres",
				DatabaseDSN:                 "db",
				MongoURI:                    "mongodb://mongo:27017",
				OpenAIAPIKey:                "sk-1",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 5 * time.Minute,
				TemplatesFile:               "tpl.yaml",
				LogLevel:                    "debug",
				UseMockLLM:                  true,
				S3Bucket:                    "transcripts",
				S3BaseEndpoint:              "http://endpoint",
			}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-p", "planner", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"}},
		{name: "bad duration", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
