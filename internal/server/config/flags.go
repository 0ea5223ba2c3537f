package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health endpoint address (e.g., ":9090")
//	-b string   storage backend: postgres, mongo or memory
//	-d string   PostgreSQL DSN
//	-m string   MongoDB URI
//	-k string   OpenAI API key
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-f string   templates YAML file
//	-l string   log level
//	-mock       answer completions with the prompt itself
//	-bucket string  S3 bucket for transcript export
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with the CLI pipeline selector.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-b", "-d", "-m", "-k", "-s", "-t", "-f", "-l", "-mock", "-bucket", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (postgres, mongo, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongo URI")
	fs.StringVar(&config.OpenAIAPIKey, "k", config.OpenAIAPIKey, "OpenAI API key")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.TemplatesFile, "f", config.TemplatesFile, "templates YAML file")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&config.UseMockLLM, "mock", config.UseMockLLM, "use the echo completion client")
	fs.StringVar(&config.S3Bucket, "bucket", config.S3Bucket, "S3 bucket for transcript export")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
