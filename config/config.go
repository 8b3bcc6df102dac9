/*
Package config loads the connection settings from flags and environment
variables. Environment names follow the libpq convention (PGHOST, PGPORT,
PGUSER, PGDATABASE, PGPASSWORD) so the client can sit next to psql in a
shell without extra wiring. Validation happens before any network
activity: a missing value or a non-numeric port is a fatal startup error.
*/
package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultQuery = "SELECT * FROM my_table LIMIT 3;"

/*
Config is everything the client needs to reach and log in to one server.
*/
type Config struct {
	Host     string
	Port     int
	User     string
	Database string
	Password string
	Query    string
}

/*
SetConfigDefaults registers defaults, flags, and environment bindings.
Call once, before pflag.Parse.
*/
func SetConfigDefaults() {
	viper.SetDefault("host", "")
	viper.SetDefault("port", "5432")
	viper.SetDefault("user", "")
	viper.SetDefault("database", "")
	viper.SetDefault("password", "")
	viper.SetDefault("query", defaultQuery)

	pflag.String("host", "", "Database host name")
	pflag.String("port", "5432", "Database port")
	pflag.String("user", "", "User name to log in as")
	pflag.String("database", "", "Database name to connect to")
	pflag.String("query", defaultQuery, "Query to run once connected")

	viper.BindPFlag("host", pflag.Lookup("host"))
	viper.BindPFlag("port", pflag.Lookup("port"))
	viper.BindPFlag("user", pflag.Lookup("user"))
	viper.BindPFlag("database", pflag.Lookup("database"))
	viper.BindPFlag("query", pflag.Lookup("query"))

	viper.BindEnv("host", "PGHOST")
	viper.BindEnv("port", "PGPORT")
	viper.BindEnv("user", "PGUSER")
	viper.BindEnv("database", "PGDATABASE")
	viper.BindEnv("password", "PGPASSWORD")
	viper.BindEnv("query", "PGPING_QUERY")
}

/*
GetConfig validates the bound settings and returns them. The port is kept
as a string until here so that a non-numeric value fails loudly instead
of silently becoming zero.
*/
func GetConfig() (*Config, error) {
	c := &Config{
		Host:     viper.GetString("host"),
		User:     viper.GetString("user"),
		Database: viper.GetString("database"),
		Password: viper.GetString("password"),
		Query:    viper.GetString("query"),
	}

	if c.Host == "" {
		return nil, fmt.Errorf("database host must be specified")
	}
	if c.User == "" {
		return nil, fmt.Errorf("user name must be specified")
	}
	if c.Database == "" {
		return nil, fmt.Errorf("database name must be specified")
	}
	if c.Password == "" {
		return nil, fmt.Errorf("password must be specified")
	}

	portStr := viper.GetString("port")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("port %d out of range", port)
	}
	c.Port = port

	return c, nil
}
