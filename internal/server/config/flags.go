package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address of the serving endpoint (e.g., ":8080")
//	-r string   gRPC bind address of the command service (e.g., ":50051")
//	-D string   database driver: sqlite | postgres
//	-d string   database DSN or SQLite file path
//	-o string   owner identity
//	-s string   service secret for caller credentials
//	-k string   static owner bypass token
//	-t int      cache TTL, seconds
//	-v string   valkey address (cache backend "valkey")
//	-w int      background sweep interval, seconds (0 disables)
//	-x string   extractor binary
//	-l string   log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-D", "-d", "-o", "-s", "-k", "-t", "-v", "-w", "-x", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the serving endpoint")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "address and port of the command service")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (sqlite|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.OwnerID, "o", config.OwnerID, "owner identity")
	fs.StringVar(&config.ServiceSecret, "s", config.ServiceSecret, "service secret")
	fs.StringVar(&config.OwnerBypassToken, "k", config.OwnerBypassToken, "static owner bypass token")

	cacheTTL := fs.Int("t", int(config.CacheTTL.Seconds()), "cache ttl (in seconds)")

	fs.StringVar(&config.ValkeyAddr, "v", config.ValkeyAddr, "valkey address")

	sweepInterval := fs.Int("w", int(config.SweepInterval.Seconds()), "sweep interval (in seconds, 0 disables)")

	fs.StringVar(&config.ExtractorBinary, "x", config.ExtractorBinary, "extractor binary")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CacheTTL = time.Duration(*cacheTTL) * time.Second
	config.SweepInterval = time.Duration(*sweepInterval) * time.Second
}
