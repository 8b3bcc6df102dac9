package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"pgping/config"
	"pgping/pgwire"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	pflag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Settings may also come from the environment:")
	fmt.Fprintln(os.Stderr, "  PGHOST, PGPORT, PGUSER, PGDATABASE, PGPASSWORD")
}

func main() {
	var help bool
	var debug bool

	config.SetConfigDefaults()
	pflag.BoolVarP(&help, "help", "h", false, "Print help message")
	pflag.BoolVarP(&debug, "debug", "D", false, "Log every message sent and received")

	pflag.Parse()
	if !pflag.Parsed() || help {
		printUsage()
		os.Exit(2)
	}
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		printUsage()
		os.Exit(2)
	}

	conn, err := pgwire.Connect(cfg.Host, cfg.Port, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
	defer conn.Close()

	session := pgwire.NewSession(conn, cfg.User, cfg.Database, cfg.Password, cfg.Query)
	if err = session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

// describe prefixes the error with its origin so that parse failures,
// protocol violations, and plain I/O trouble read differently at the top
// level.
func describe(err error) string {
	switch err.(type) {
	case *pgwire.ParseError:
		return err.Error()
	case *pgwire.ProtocolError:
		return err.Error()
	default:
		return fmt.Sprintf("connection failed: %s", err)
	}
}
