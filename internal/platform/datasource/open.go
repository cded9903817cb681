package datasource

import (
	"context"
	"strings"
)

// Config selects and configures a Source.
type Config struct {
	// Location is a file path, an s3://bucket/key uri or a postgres:// url.
	Location   string
	S3         S3Config
	DBMaxConns int32
	DBMinConns int32
}

// Open returns the Source named by cfg.Location. A *PostgresSource holds a
// connection pool that the caller must Close.
func Open(ctx context.Context, cfg Config) (Source, error) {
	loc := cfg.Location
	switch {
	case strings.HasPrefix(loc, "s3://"):
		return NewS3Source(ctx, loc, cfg.S3)
	case strings.HasPrefix(loc, "postgres://"), strings.HasPrefix(loc, "postgresql://"):
		return NewPostgresSource(ctx, loc, cfg.DBMaxConns, cfg.DBMinConns)
	default:
		return NewFileSource(loc), nil
	}
}
