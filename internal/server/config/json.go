package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
	"github.com/dmitrijs2005/agentdesk/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for lifetimes, which allows parsing both string
// values such as "15m" and integer nanoseconds. Temperatures and switches are
// pointers so that an explicit 0 or false can be told apart from an absent key.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Only keys present in the file overwrite the runtime Config.
type JsonConfig struct {
	HTTPAddr       string `json:"http_addr"`
	GRPCAddr       string `json:"grpc_addr"`
	StorageBackend string `json:"storage_backend"`
	DatabaseDSN    string `json:"database_dsn"`
	MongoURI       string `json:"mongo_uri"`
	MongoDatabase  string `json:"mongo_database"`

	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"`

	EmailModel          string   `json:"email_model"`
	EmailTemperature    *float64 `json:"email_temperature"`
	PlannerModel        string   `json:"planner_model"`
	PlannerTemperature  *float64 `json:"planner_temperature"`
	ResearchModel       string   `json:"research_model"`
	ResearchTemperature *float64 `json:"research_temperature"`
	UseMockLLM          *bool    `json:"use_mock_llm"`

	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`

	TemplatesFile  string `json:"templates_file"`
	SearchEndpoint string `json:"search_endpoint"`
	SearchResults  int    `json:"search_results"`
	RecentLimit    int    `json:"recent_limit"`
	LogLevel       string `json:"log_level"`

	S3RootUser              string          `json:"s3_root_user"`
	S3RootPassword          string          `json:"s3_root_password"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3BaseEndpoint          string          `json:"s3_base_endpoint"`
	PresignValidityDuration *timex.Duration `json:"presign_validity_duration"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setString(&config.EmailModel, c.EmailModel)
	setString(&config.PlannerModel, c.PlannerModel)
	setString(&config.ResearchModel, c.ResearchModel)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TemplatesFile, c.TemplatesFile)
	setString(&config.SearchEndpoint, c.SearchEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.EmailTemperature != nil {
		config.EmailTemperature = *c.EmailTemperature
	}
	if c.PlannerTemperature != nil {
		config.PlannerTemperature = *c.PlannerTemperature
	}
	if c.ResearchTemperature != nil {
		config.ResearchTemperature = *c.ResearchTemperature
	}
	if c.UseMockLLM != nil {
		config.UseMockLLM = *c.UseMockLLM
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PresignValidityDuration != nil {
		config.PresignValidityDuration = c.PresignValidityDuration.Duration
	}
	if c.SearchResults != 0 {
		config.SearchResults = c.SearchResults
	}
	if c.RecentLimit != 0 {
		config.RecentLimit = c.RecentLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
