package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetynet/safetynet/internal/domain/firestation"
	"github.com/safetynet/safetynet/internal/domain/medicalrecord"
	"github.com/safetynet/safetynet/internal/domain/person"
)

const (
	selectPersons = `SELECT first_name, last_name, address, city, zip, phone, email
		FROM persons ORDER BY id`
	selectFireStations = `SELECT address, station
		FROM firestations ORDER BY id`
	selectMedicalRecords = `SELECT first_name, last_name, birthdate,
		COALESCE(array_remove(medications, NULL), '{}'),
		COALESCE(array_remove(allergies, NULL), '{}')
		FROM medical_records ORDER BY id`
)

// querier is the subset of *pgxpool.Pool the source reads through.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the three collections from tables persons,
// firestations and medical_records, in id order.
type PostgresSource struct {
	db   querier
	pool *pgxpool.Pool
	name string
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresSource connects to databaseURL. Close releases the pool.
func NewPostgresSource(ctx context.Context, databaseURL string, maxConns, minConns int32) (*PostgresSource, error) {
	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, err
	}
	cfg := pool.Config().ConnConfig
	return &PostgresSource{
		db:   pool,
		pool: pool,
		name: fmt.Sprintf("postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
	}, nil
}

func (s *PostgresSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSource) Describe() string {
	return s.name
}

// Load reads the three tables. Columns are scanned as nullable so a NULL
// only empties that field; the record is then judged by the same identity
// checks as a file record.
func (s *PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	persons, err := queryRecords(ctx, s.db, selectPersons, func(row pgx.Rows, p *person.Person) error {
		var first, last, address, city, zip, phone, email pgtype.Text
		if err := row.Scan(&first, &last, &address, &city, &zip, &phone, &email); err != nil {
			return err
		}
		*p = person.Person{
			FirstName: first.String,
			LastName:  last.String,
			Address:   address.String,
			City:      city.String,
			Zip:       zip.String,
			Phone:     phone.String,
			Email:     email.String,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}
	stations, err := queryRecords(ctx, s.db, selectFireStations, func(row pgx.Rows, f *firestation.FireStation) error {
		var address pgtype.Text
		var station pgtype.Int4
		if err := row.Scan(&address, &station); err != nil {
			return err
		}
		f.Address = address.String
		f.Station = firestation.StationNumber(station.Int32)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load fire stations: %w", err)
	}
	records, err := queryRecords(ctx, s.db, selectMedicalRecords, func(row pgx.Rows, m *medicalrecord.MedicalRecord) error {
		var first, last, birthdate pgtype.Text
		var medications, allergies []string
		if err := row.Scan(&first, &last, &birthdate, &medications, &allergies); err != nil {
			return err
		}
		*m = medicalrecord.MedicalRecord{
			FirstName:   first.String,
			LastName:    last.String,
			Birthdate:   birthdate.String,
			Medications: medications,
			Allergies:   allergies,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load medical records: %w", err)
	}
	return newDataset(persons, stations, records), nil
}

// queryRecords scans every row eagerly into rawRecords. pgx closes the
// result set on the first failed Scan, so a scan error fails the whole
// query; per-record problems surface later, when the decoded records are
// validated.
func queryRecords[T any](ctx context.Context, db querier, sql string, scan func(pgx.Rows, *T) error) ([]rawRecord, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rawRecord
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out), err)
		}
		out = append(out, func(dst any) error {
			*dst.(*T) = v
			return nil
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
