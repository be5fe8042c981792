// Package storage persists processed datasets into a relational store.
package storage

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
)

// Dialect captures the SQL differences between the supported drivers
type Dialect struct {
	Name       string
	DriverName string
	quote      func(string) string
	bindVar    func(i int) string
}

// Quote quotes an identifier
func (d Dialect) Quote(ident string) string { return d.quote(ident) }

// BindVar returns the placeholder of the i-th (1-based) argument
func (d Dialect) BindVar(i int) string { return d.bindVar(i) }

var (
	// MySQL uses go-sql-driver/mysql
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		quote:      func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" },
		bindVar:    func(int) string { return "?" },
	}
	// Postgres uses lib/pq
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "postgres",
		quote:      pq.QuoteIdentifier,
		bindVar:    func(i int) string { return "$" + strconv.Itoa(i) },
	}
	// SQLite uses the pure-Go modernc.org/sqlite driver
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		quote:      func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
		bindVar:    func(int) string { return "?" },
	}
)

// DialectFor returns the dialect of a configured driver
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, apperrors.NewConfigError(fmt.Sprintf("unsupported database driver %q", driver), nil)
	}
}

// DSN builds the driver connection string. withDatabase=false connects to
// the server without selecting a database, as needed by CreateDatabase.
func DSN(cfg config.DatabaseConfig, withDatabase bool) (string, error) {
	if cfg.DSN != "" && withDatabase {
		return cfg.DSN, nil
	}
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return "", err
	}

	switch d.Name {
	case MySQL.Name:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.Timeout = cfg.ConnectTimeout
		if withDatabase {
			mc.DBName = cfg.Name
		}
		if cfg.Params != "" {
			values, err := url.ParseQuery(cfg.Params)
			if err != nil {
				return "", apperrors.NewConfigError("invalid database params", err)
			}
			mc.Params = make(map[string]string, len(values))
			for k := range values {
				mc.Params[k] = values.Get(k)
			}
		}
		return mc.FormatDSN(), nil

	case Postgres.Name:
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:   "/postgres",
		}
		if withDatabase {
			u.Path = "/" + cfg.Name
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		q, err := url.ParseQuery(cfg.Params)
		if err != nil {
			return "", apperrors.NewConfigError("invalid database params", err)
		}
		if cfg.ConnectTimeout > 0 && q.Get("connect_timeout") == "" {
			q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil

	default:
		// the database name is the file path
		return cfg.Name, nil
	}
}
