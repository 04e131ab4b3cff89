package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/mediagate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the command service
//	-u string   caller identity
//	-s string   service secret
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the command service")
	fs.StringVar(&cfg.CallerID, "u", cfg.CallerID, "caller identity")
	fs.StringVar(&cfg.ServiceSecret, "s", cfg.ServiceSecret, "service secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
