package store

import (
	"fmt"
	"net/url"
	"strconv"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite, DialectPostgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("ParseDialect: unsupported store %q", s)
	}
}

// Remote reports whether the dialect talks to a server over the network.
func (d Dialect) Remote() bool {
	return d == DialectPostgres
}

// Placeholder returns the bind marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// MaxParams is the most bind parameters one statement may carry.
func (d Dialect) MaxParams() int {
	if d == DialectPostgres {
		return 65535
	}
	return 32766
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func postgresDSN(o Options) string {
	q := url.Values{}
	sslmode := o.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	q.Set("sslmode", sslmode)
	if o.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(o.ConnectTimeout.Seconds())))
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     o.Host,
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}
	if o.Port > 0 {
		u.Host = o.Host + ":" + strconv.Itoa(o.Port)
	}
	if o.Username != "" {
		u.User = url.UserPassword(o.Username, o.Password)
	}
	return u.String()
}
