package dumputil

import (
	"fmt"

	"go.uber.org/multierr"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"rptcore/layout/render"
	"rptcore/process"
)

// All positions are stored in micro-points.
const schema = `
CREATE TABLE targets (
	name        TEXT PRIMARY KEY,
	page_height INTEGER NOT NULL,
	height      INTEGER NOT NULL
);
CREATE TABLE pages (
	target     TEXT NOT NULL REFERENCES targets(name),
	number     INTEGER NOT NULL,
	page_start INTEGER NOT NULL,
	page_end   INTEGER NOT NULL,
	shift      INTEGER NOT NULL,
	PRIMARY KEY (target, number)
);
CREATE TABLE breaks (
	target   TEXT NOT NULL REFERENCES targets(name),
	position INTEGER NOT NULL,
	major    INTEGER NOT NULL,
	shift    INTEGER NOT NULL,
	PRIMARY KEY (target, position)
);
CREATE TABLE boxes (
	target   TEXT NOT NULL REFERENCES targets(name),
	id       TEXT NOT NULL,
	parent   TEXT,
	kind     TEXT NOT NULL,
	name     TEXT NOT NULL,
	y        INTEGER NOT NULL,
	height   INTEGER NOT NULL,
	row_span INTEGER NOT NULL,
	col_span INTEGER NOT NULL,
	page     INTEGER NOT NULL,
	split    INTEGER NOT NULL,
	PRIMARY KEY (target, id)
);
`

// WriteSQLite stores layout results of all targets into <stem>.sqlite so they
// could be compared with queries.
func WriteSQLite(results []*process.Result, inPath, outDir string, overwrite bool) (err error) {
	outPath, err := OutputPath(inPath, outDir, ".sqlite", overwrite)
	if err != nil {
		return err
	}
	conn, err := sqlite.OpenConn(outPath, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return fmt.Errorf("open %s: %w", outPath, err)
	}
	defer func() { err = multierr.Append(err, conn.Close()) }()

	if err := StoreResults(conn, results); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// StoreResults creates schema on conn and fills it in a single transaction.
func StoreResults(conn *sqlite.Conn, results []*process.Result) (err error) {
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	defer sqlitex.Save(conn)(&err)

	for _, res := range results {
		if err := storeResult(conn, res); err != nil {
			return fmt.Errorf("target %q: %w", res.Target, err)
		}
	}
	return nil
}

func storeResult(conn *sqlite.Conn, res *process.Result) error {
	if err := exec(conn, `INSERT INTO targets (name, page_height, height) VALUES (?, ?, ?)`,
		res.Target, res.PageHeight, res.Height); err != nil {
		return err
	}
	for _, p := range res.Pages() {
		if err := exec(conn, `INSERT INTO pages (target, number, page_start, page_end, shift) VALUES (?, ?, ?, ?, ?)`,
			res.Target, int64(p.Number), p.Start, p.End, p.Shift); err != nil {
			return err
		}
	}
	for _, e := range res.Breaks.Entries() {
		if err := exec(conn, `INSERT INTO breaks (target, position, major, shift) VALUES (?, ?, ?, ?)`,
			res.Target, e.Position, flag(e.Major), e.AfterShift); err != nil {
			return err
		}
	}

	var err error
	res.Tree.Walk(res.Tree.Root(), func(b *render.Box, _ int) bool {
		if err != nil {
			return false
		}
		var parent any
		if p := b.Parent(); p != nil {
			parent = p.ID.String()
		}
		err = exec(conn, `INSERT INTO boxes (target, id, parent, kind, name, y, height, row_span, col_span, page, split)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.Target, b.ID.String(), parent, b.Kind.String(), b.Name, b.Y, b.Height,
			int64(b.RowSpan), int64(b.ColSpan), int64(res.PageOf(b.Y)),
			flag(b.Height > 0 && res.Breaks.IsCrossingPagebreak(b.Y, b.Height, 0)))
		return err == nil
	})
	return err
}

func exec(conn *sqlite.Conn, query string, args ...any) error {
	return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args})
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
