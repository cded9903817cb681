package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/safetynet/internal/domain/firestation"
)

// fakeRows serves fixed rows to Scan, assigning by destination type. Like
// pgx, a failed Scan closes the rows and is reported by Err.
type fakeRows struct {
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	if err := r.scan(dest); err != nil {
		r.err = err
		r.closed = true
		return err
	}
	return nil
}

func (r *fakeRows) scan(dest []any) error {
	row := r.rows[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("want %d columns, row has %d", len(dest), len(row))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *pgtype.Text:
			if row[i] == nil {
				*d = pgtype.Text{}
				continue
			}
			s, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into text", i, row[i])
			}
			*d = pgtype.Text{String: s, Valid: true}
		case *pgtype.Int4:
			if row[i] == nil {
				*d = pgtype.Int4{}
				continue
			}
			n, ok := row[i].(int32)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into int4", i, row[i])
			}
			*d = pgtype.Int4{Int32: n, Valid: true}
		case *[]string:
			l, ok := row[i].([]string)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into []string", i, row[i])
			}
			*d = l
		default:
			return fmt.Errorf("column %d: unsupported destination %T", i, d)
		}
	}
	return nil
}

type fakeDB struct {
	tables map[string][][]any
	fail   error
}

func (db *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if db.fail != nil {
		return nil, db.fail
	}
	for table, rows := range db.tables {
		if strings.Contains(sql, "FROM "+table+" ") {
			return &fakeRows{rows: rows}, nil
		}
	}
	return &fakeRows{}, nil
}

func TestPostgresSource_Load(t *testing.T) {
	db := &fakeDB{tables: map[string][][]any{
		"persons": {
			{"John", "Boyd", "1509 Culver St", "Culver", "97451", "841-874-6512", "jaboyd@email.com"},
			{nil, "Row", "1509 Culver St", "Culver", "97451", "841", "x@y.z"},
			{"Tenley", "Boyd", nil, nil, "97451", "841-874-6512", nil},
		},
		"firestations": {
			{"1509 Culver St", int32(3)},
			{"29 15th St", nil},
		},
		"medical_records": {
			{"John", "Boyd", "03/06/1984", []string{"aznol:350mg"}, []string{}},
			{"Tenley", "Boyd", nil, []string{}, []string{}},
		},
	}}
	src := &PostgresSource{db: db, name: "postgres test"}

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Persons, 2)
	assert.Equal(t, "jaboyd@email.com", ds.Persons[0].Email)
	assert.Equal(t, "Tenley", ds.Persons[1].FirstName)
	assert.Empty(t, ds.Persons[1].Address)
	require.Len(t, ds.FireStations, 1)
	assert.Equal(t, firestation.StationNumber(3), ds.FireStations[0].Station)
	require.Len(t, ds.MedicalRecords, 2)
	assert.Equal(t, []string{"aznol:350mg"}, ds.MedicalRecords[0].Medications)
	assert.Empty(t, ds.MedicalRecords[1].Birthdate)

	require.Len(t, ds.Problems, 2)
	assert.Equal(t, RecordError{Collection: CollectionPersons, Index: 1, Err: ds.Problems[0].Err}, ds.Problems[0])
	assert.Equal(t, RecordError{Collection: CollectionFireStations, Index: 1, Err: ds.Problems[1].Err}, ds.Problems[1])
}

func TestPostgresSource_ScanFailureFailsLoad(t *testing.T) {
	db := &fakeDB{tables: map[string][][]any{
		"persons": {
			{"John", "Boyd", "1509 Culver St", "Culver", "97451", "841-874-6512", "jaboyd@email.com"},
			{"Jacob", "Boyd", int32(7), "Culver", "97451", "841", "x@y.z"},
			{"Tenley", "Boyd", "1509 Culver St", "Culver", "97451", "841", "t@y.z"},
		},
	}}
	src := &PostgresSource{db: db, name: "postgres test"}

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "load persons")
	assert.ErrorContains(t, err, "row 1")
}

func TestPostgresSource_QueryFailure(t *testing.T) {
	boom := errors.New("connection reset")
	src := &PostgresSource{db: &fakeDB{fail: boom}, name: "postgres test"}

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "load persons")
}
