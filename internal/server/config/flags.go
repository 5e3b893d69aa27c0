package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bookreview/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-o string   allowed CORS origin
//	-k int      RSA key size in bits
//	-b int      bcrypt cost
//	-l string   log level
//	-r float    /authenticate requests per second per client
//	-u int      /authenticate burst per client
//	-t int      shutdown timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so -c/-config and -env never reach this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-o", "-k", "-b", "-l", "-r", "-u", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CORSAllowedOrigin, "o", config.CORSAllowedOrigin, "allowed CORS origin")
	fs.IntVar(&config.RSAKeyBits, "k", config.RSAKeyBits, "RSA signing key size in bits")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Float64Var(&config.AuthRateLimit, "r", config.AuthRateLimit, "authenticate requests per second per client")
	fs.IntVar(&config.AuthRateBurst, "u", config.AuthRateBurst, "authenticate burst per client")

	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only has whole-second precision, so an earlier sub-second value
	// survives unless the flag is given.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})
}
