package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authvault/flagx"
	"github.com/dmitrijs2005/authvault/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the token lifetime, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN           string         `json:"database_dsn"`
	DynamoTable           string         `json:"dynamo_table"`
	AWSRegion             string         `json:"aws_region"`
	AWSAccessKeyID        string         `json:"aws_access_key_id"`
	AWSSecretAccessKey    string         `json:"aws_secret_access_key"`
	AWSBaseEndpoint       string         `json:"aws_base_endpoint"`
	SecretKey             string         `json:"secret_key"`
	KMSKeyID              string         `json:"kms_key_id"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	TokenScope            string         `json:"token_scope"`
	MinPasswordLength     int            `json:"min_password_length"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a half-applied configuration is worse than not starting.
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

	config.DatabaseDSN = c.DatabaseDSN
	config.DynamoTable = c.DynamoTable
	config.AWSRegion = c.AWSRegion
	config.AWSAccessKeyID = c.AWSAccessKeyID
	config.AWSSecretAccessKey = c.AWSSecretAccessKey
	config.AWSBaseEndpoint = c.AWSBaseEndpoint
	config.SecretKey = c.SecretKey
	config.KMSKeyID = c.KMSKeyID
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.TokenScope = c.TokenScope
	config.MinPasswordLength = c.MinPasswordLength
}
