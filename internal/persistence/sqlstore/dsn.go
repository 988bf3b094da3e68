package sqlstore

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func (c Config) dataSourceName() (string, error) {
	switch c.Dialect {
	case DialectSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return "", fmt.Errorf("sqlite store requires a database path")
		}
		return c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", nil
	case DialectMySQL:
		if err := c.requireNetwork(); err != nil {
			return "", err
		}
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.User = c.User
		mc.Passwd = c.Password
		mc.DBName = c.Name
		// Report matched rows so an update that changes nothing is not
		// mistaken for a missing row.
		mc.ClientFoundRows = true
		switch {
		case c.TLS && c.TLSSkipVerify:
			mc.TLSConfig = "skip-verify"
		case c.TLS:
			mc.TLSConfig = "true"
		default:
			mc.TLSConfig = "false"
		}
		return mc.FormatDSN(), nil
	case DialectPostgres:
		if err := c.requireNetwork(); err != nil {
			return "", err
		}
		sslmode := "disable"
		switch {
		case c.TLS && c.TLSSkipVerify:
			sslmode = "require"
		case c.TLS:
			sslmode = "verify-full"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Name,
			RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported store dialect %q", c.Dialect)
	}
}

func (c Config) requireNetwork() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if c.Port <= 0 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "database name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s store requires %s", c.Dialect, strings.Join(missing, ", "))
	}
	return nil
}
