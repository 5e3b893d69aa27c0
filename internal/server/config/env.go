package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/bookreview/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "BOOKREVIEW_"

// parseEnv overlays BOOKREVIEW_* environment variables onto config.
//
// A dotenv file named by the -env flag is loaded first and must exist.
// Without the flag, ./.env is loaded when present. Variables already set in
// the process environment win over the file. Malformed numbers panic, the
// same way a malformed JSON file does.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	lookupString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	lookupString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	lookupString(&config.DatabaseDSN, "DATABASE_DSN")
	lookupString(&config.CORSAllowedOrigin, "CORS_ALLOWED_ORIGIN")
	lookupString(&config.LogLevel, "LOG_LEVEL")

	if v, ok := lookup("RSA_KEY_BITS"); ok {
		config.RSAKeyBits = mustAtoi(v)
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		config.BcryptCost = mustAtoi(v)
	}
	if v, ok := lookup("AUTH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		config.AuthRateLimit = f
	}
	if v, ok := lookup("AUTH_RATE_BURST"); ok {
		config.AuthRateBurst = mustAtoi(v)
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func lookupString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func mustAtoi(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	return n
}
