package pg

import (
	"database/sql"
	"fmt"
	"strings"
)

// Config describes one postgres endpoint. The ledger runs a write primary and
// an optional read replica, each with its own Config.
type Config struct {
	User     string `env:"USER"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	Password string `env:"PASSWORD"`
	Database string `env:"DBNAME"`
	SSLMode  string `env:"SSLMODE"`
}

// DSN renders the libpq keyword/value string. Sessions are pinned to UTC so
// transaction timestamps and date-range statistics agree across hosts.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + quoteDSN(c.Host),
		"user=" + quoteDSN(c.User),
		"password=" + quoteDSN(c.Password),
		"dbname=" + quoteDSN(c.Database),
		"port=" + quoteDSN(c.Port),
		"sslmode=" + sslMode,
		"TimeZone=UTC",
	}
	return strings.Join(parts, " ")
}

// quoteDSN quotes values containing spaces or quotes, as libpq expects.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return fmt.Sprintf("'%s'", v)
}

func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.DSN())
}
