package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
)

// loadEnvFiles loads .env files into the process environment. Variables that
// are already set win. An explicit -env path must exist; the implicit
// .env.local and .env are optional.
func loadEnvFiles() error {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}

	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// parseEnv overlays Config with environment variables. OPENAI_API_KEY and
// MONGO_URI keep their conventional names; everything else is prefixed with
// AGENTDESK_. Malformed numbers and durations panic, like malformed JSON.
func parseEnv(config *Config) {
	if err := loadEnvFiles(); err != nil {
		panic(err)
	}

	envString(&config.HTTPAddr, "AGENTDESK_HTTP_ADDR")
	envString(&config.GRPCAddr, "AGENTDESK_GRPC_ADDR")
	envString(&config.StorageBackend, "AGENTDESK_STORAGE")
	envString(&config.DatabaseDSN, "DATABASE_DSN", "AGENTDESK_DATABASE_DSN")
	envString(&config.MongoURI, "MONGO_URI", "AGENTDESK_MONGO_URI")
	envString(&config.MongoDatabase, "AGENTDESK_MONGO_DATABASE")
	envString(&config.OpenAIAPIKey, "OPENAI_API_KEY", "AGENTDESK_OPENAI_API_KEY")
	envString(&config.OpenAIBaseURL, "OPENAI_BASE_URL", "AGENTDESK_OPENAI_BASE_URL")
	envString(&config.EmailModel, "AGENTDESK_EMAIL_MODEL")
	envFloat(&config.EmailTemperature, "AGENTDESK_EMAIL_TEMPERATURE")
	envString(&config.PlannerModel, "AGENTDESK_PLANNER_MODEL")
	envFloat(&config.PlannerTemperature, "AGENTDESK_PLANNER_TEMPERATURE")
	envString(&config.ResearchModel, "AGENTDESK_RESEARCH_MODEL")
	envFloat(&config.ResearchTemperature, "AGENTDESK_RESEARCH_TEMPERATURE")
	envBool(&config.UseMockLLM, "AGENTDESK_MOCK_LLM")
	envString(&config.SecretKey, "AGENTDESK_SECRET_KEY")
	envDuration(&config.AccessTokenValidityDuration, "AGENTDESK_ACCESS_TOKEN_TTL")
	envString(&config.TemplatesFile, "AGENTDESK_TEMPLATES_FILE")
	envString(&config.SearchEndpoint, "AGENTDESK_SEARCH_ENDPOINT")
	envInt(&config.SearchResults, "AGENTDESK_SEARCH_RESULTS")
	envInt(&config.RecentLimit, "AGENTDESK_RECENT_LIMIT")
	envString(&config.LogLevel, "AGENTDESK_LOG_LEVEL")
	envString(&config.S3RootUser, "AGENTDESK_S3_USER")
	envString(&config.S3RootPassword, "AGENTDESK_S3_PASSWORD")
	envString(&config.S3Bucket, "AGENTDESK_S3_BUCKET")
	envString(&config.S3Region, "AGENTDESK_S3_REGION")
	envString(&config.S3BaseEndpoint, "AGENTDESK_S3_ENDPOINT")
	envDuration(&config.PresignValidityDuration, "AGENTDESK_PRESIGN_TTL")
}

// lookupEnv returns the value of the last non-empty variable among keys.
func lookupEnv(keys ...string) (string, bool) {
	value, found := "", false
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			value, found = strings.TrimSpace(v), true
		}
	}
	return value, found
}

func envString(dst *string, keys ...string) {
	if v, ok := lookupEnv(keys...); ok {
		*dst = v
	}
}

func envInt(dst *int, keys ...string) {
	if v, ok := lookupEnv(keys...); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", keys[len(keys)-1], err))
		}
		*dst = n
	}
}

func envFloat(dst *float64, keys ...string) {
	if v, ok := lookupEnv(keys...); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", keys[len(keys)-1], err))
		}
		*dst = f
	}
}

func envBool(dst *bool, keys ...string) {
	if v, ok := lookupEnv(keys...); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", keys[len(keys)-1], err))
		}
		*dst = b
	}
}

func envDuration(dst *time.Duration, keys ...string) {
	if v, ok := lookupEnv(keys...); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", keys[len(keys)-1], err))
		}
		*dst = d
	}
}
