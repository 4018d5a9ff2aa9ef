package sources

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type sqliteReader struct {
	filename   string
	scan_table string
	list_table string
}

func (self *sqliteReader) ReadScanGrid(ctx context.Context) (*Grid, error) {
	return self.readGrid(ctx, self.scan_table)
}

func (self *sqliteReader) ReadListGrid(ctx context.Context) (*Grid, error) {
	return self.readGrid(ctx, self.list_table)
}

// The filename is escaped so ? and # are not taken as the start of
// the query or fragment.
func sqliteDSN(filename, mode string) string {
	return "file:" + url.PathEscape(filename) + "?mode=" + mode
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (self *sqliteReader) readGrid(
	ctx context.Context, table string) (*Grid, error) {
	handle, err := sql.Open("sqlite3", sqliteDSN(self.filename, "ro"))
	if err != nil {
		return nil, errors.Wrap(err, "sqlite")
	}
	defer handle.Close()

	rows, err := handle.QueryContext(ctx,
		"SELECT * FROM "+quoteIdentifier(table))
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite: reading table %v", table)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "sqlite")
	}

	grid := &Grid{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		err = rows.Scan(ptrs...)
		if err != nil {
			return nil, errors.Wrapf(err, "sqlite: reading table %v", table)
		}
		grid.Rows = append(grid.Rows, values)
	}

	return grid, rows.Err()
}

// Reads psscan and pslist results saved with --output=sqlite into
// the same database.
func NewSQLiteSource(filename, scan_table, list_table string) *GridSource {
	return &GridSource{
		reader: &sqliteReader{
			filename:   filename,
			scan_table: scan_table,
			list_table: list_table,
		},
	}
}
