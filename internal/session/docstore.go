package session

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"

	"github.com/unibrain/backend/internal/models"
)

// DocStore keeps one session's extracted documents in a temporary DuckDB
// file so they can be searched without holding extra copies in memory.
type DocStore struct {
	db     *sql.DB
	dbPath string
}

// NewDocStore creates session_<id>.duckdb in tempDir.
func NewDocStore(tempDir, sessionID string) (*DocStore, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("session_%s.duckdb", sessionID))
	return NewDocStoreAtPath(dbPath)
}

// NewDocStoreAtPath creates a document store at a specific path.
func NewDocStoreAtPath(dbPath string) (*DocStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			seq      INTEGER NOT NULL,
			file_id  VARCHAR NOT NULL,
			name     VARCHAR NOT NULL,
			format   VARCHAR,
			sha256   VARCHAR NOT NULL,
			content  VARCHAR,
			error    VARCHAR
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DocStore{db: db, dbPath: dbPath}, nil
}

// Replace swaps the stored documents for docs using the Appender API.
func (ds *DocStore) Replace(ctx context.Context, docs []models.ExtractedDocument) error {
	if _, err := ds.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	conn, err := ds.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "documents")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for _, d := range docs {
			err := appender.AppendRow(
				int32(d.Position),
				d.FileID,
				d.Name,
				string(d.Format),
				d.SHA256,
				d.Text,
				d.Error,
			)
			if err != nil {
				return fmt.Errorf("failed to append document %d: %w", d.Position, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}

// List returns all documents in upload order.
func (ds *DocStore) List(ctx context.Context) ([]models.ExtractedDocument, error) {
	return ds.query(ctx, `SELECT seq, file_id, name, format, sha256, content, error
		FROM documents ORDER BY seq`)
}

// Search returns documents whose name or text contains q, ignoring case, in
// upload order.
func (ds *DocStore) Search(ctx context.Context, q string) ([]models.ExtractedDocument, error) {
	return ds.query(ctx, `SELECT seq, file_id, name, format, sha256, content, error
		FROM documents
		WHERE strpos(lower(content), lower(CAST(? AS VARCHAR))) > 0
		   OR strpos(lower(name), lower(CAST(? AS VARCHAR))) > 0
		ORDER BY seq`, q, q)
}

// Count returns the number of stored documents.
func (ds *DocStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := ds.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (ds *DocStore) query(ctx context.Context, q string, args ...interface{}) ([]models.ExtractedDocument, error) {
	rows, err := ds.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.ExtractedDocument, 0)
	for rows.Next() {
		var (
			d                  models.ExtractedDocument
			format, text, dErr sql.NullString
		)
		if err := rows.Scan(&d.Position, &d.FileID, &d.Name, &format, &d.SHA256, &text, &dErr); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Format = models.Format(format.String)
		d.Text = text.String
		d.Error = dErr.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Path returns the database file location.
func (ds *DocStore) Path() string {
	return ds.dbPath
}

// Close closes the database and removes the temp file
func (ds *DocStore) Close() error {
	if ds.db != nil {
		ds.db.Close()
	}
	if ds.dbPath != "" {
		os.Remove(ds.dbPath)
		os.Remove(ds.dbPath + ".wal")
	}
	return nil
}
