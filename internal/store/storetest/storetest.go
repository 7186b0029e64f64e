// Package storetest builds throwaway record databases for tests. It is the
// only code in the module that writes to a records database.
package storetest

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema matches the externally provisioned database. The reserved columns
// carry no declared type, as in the imported source data.
const Schema = `
CREATE TABLE records (
	id INTEGER PRIMARY KEY,
	telefono TEXT,
	idfb TEXT,
	nome TEXT,
	cognome TEXT,
	sesso TEXT,
	natoa TEXT,
	residente TEXT,
	statocivile TEXT,
	azienda TEXT,
	dataAcc TEXT,
	niente,
	niente2
);
CREATE VIRTUAL TABLE records_fts USING fts5(nome, cognome, azienda, residente, natoa, idfb);
`

// Row is a fixture record. Empty strings are stored as NULL.
type Row struct {
	ID          int64
	Phone       string
	ExternalID  string
	GivenName   string
	FamilyName  string
	Sex         string
	BirthPlace  string
	Residence   string
	CivilStatus string
	Employer    string
	AccrualDate string
	Reserved1   string
	Reserved2   string
}

// New writes rows into <t.TempDir()>/data/db.sqlite and returns the path.
func New(t testing.TB, rows ...Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "db.sqlite")
	Write(t, path, rows...)
	return path
}

// Write creates the schema at path and inserts rows, indexing them in
// records_fts under the same rowid.
func Write(t testing.TB, path string, rows ...Row) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin fixture tx: %v", err)
	}
	ins, err := tx.Prepare(`INSERT INTO records (id, telefono, idfb, nome, cognome, sesso, natoa, residente,
		statocivile, azienda, dataAcc, niente, niente2) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		t.Fatalf("prepare fixture insert: %v", err)
	}
	defer ins.Close()

	for _, r := range rows {
		_, err := ins.Exec(r.ID, null(r.Phone), null(r.ExternalID), null(r.GivenName), null(r.FamilyName),
			null(r.Sex), null(r.BirthPlace), null(r.Residence), null(r.CivilStatus), null(r.Employer),
			null(r.AccrualDate), null(r.Reserved1), null(r.Reserved2))
		if err != nil {
			_ = tx.Rollback()
			t.Fatalf("insert fixture row %d: %v", r.ID, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO records_fts (rowid, nome, cognome, azienda, residente, natoa, idfb)
		SELECT id, nome, cognome, azienda, residente, natoa, idfb FROM records`); err != nil {
		_ = tx.Rollback()
		t.Fatalf("index fixture rows: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit fixture: %v", err)
	}
}

// Exec runs a statement against the fixture with a read-write handle, for
// shaping odd data the Row type cannot express.
func Exec(t testing.TB, path, stmt string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(stmt, args...); err != nil {
		t.Fatalf("exec fixture: %v", err)
	}
}

func null(s string) any {
	if s == "" {
		return nil
	}
	return s
}
