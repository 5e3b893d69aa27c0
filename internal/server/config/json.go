package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bookreview/internal/flagx"
	"github.com/dmitrijs2005/bookreview/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Interval fields
// use timex.Duration so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC  string         `json:"endpoint_addr_grpc"`
	DatabaseDSN       string         `json:"database_dsn"`
	CORSAllowedOrigin string         `json:"cors_allowed_origin"`
	RSAKeyBits        int            `json:"rsa_key_bits"`
	BcryptCost        int            `json:"bcrypt_cost"`
	LogLevel          string         `json:"log_level"`
	AuthRateLimit     float64        `json:"auth_rate_limit"`
	AuthRateBurst     int            `json:"auth_rate_burst"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, nothing is loaded. Fields absent from the file keep their current
// value. If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
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

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.CORSAllowedOrigin, c.CORSAllowedOrigin)
	setString(&config.LogLevel, c.LogLevel)

	if c.RSAKeyBits != 0 {
		config.RSAKeyBits = c.RSAKeyBits
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AuthRateLimit != 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst != 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
