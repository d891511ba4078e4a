package connection

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	Sqlite   Dialect = "sqlite"
)

var drivers = map[Dialect]string{}

func init() {
	register := func(dialect Dialect, opts ...otelsql.DriverOption) {
		driver, err := otelsql.Register(string(dialect), opts...)
		if err != nil {
			detail := "failed to register " + string(dialect) + " driver with otel"
			slog.ErrorContext(context.Background(), detail, "error", err)
			panic(detail)
		}
		drivers[dialect] = driver
	}

	register(
		Postgres,
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)

	register(
		Sqlite,
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
}

func (d Dialect) Valid() bool {
	_, ok := drivers[d]
	return ok
}

// Rebind rewrites ? placeholders into the dialect's positional form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var (
		sb strings.Builder
		n  int
	)

	sb.Grow(len(query) + 8)

	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
