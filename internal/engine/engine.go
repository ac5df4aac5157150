// Package engine owns the embedded SQLite instance behind the vault.
//
// The engine lives entirely in memory on a single pinned connection. Handle
// is a checked Uninitialized→Loaded state machine: LoadFromBytes hydrates it
// from a serialized database image, CreateEmpty starts fresh, and Export
// produces the image that is embedded into the host document.
package engine

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// sqlite database images begin with this magic header.
var snapshotMagic = []byte("SQLite format 3\x00")

// ResultSet holds the columns and rows produced by one statement.
type ResultSet struct {
	Columns []string
	Values  [][]any
}

// Handle wraps the lazily-initialized engine instance. At most one live
// instance exists per Handle; the connection is pinned for the Handle's
// lifetime so the deserialized image stays attached to it.
type Handle struct {
	db     *sql.DB
	conn   *sql.Conn
	loaded bool
}

func New() *Handle {
	return &Handle{}
}

// Loaded reports whether the engine holds a live database instance.
func (h *Handle) Loaded() bool {
	return h.loaded
}

func (h *Handle) open(ctx context.Context) error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("pin engine connection: %w", err)
	}

	h.db = db
	h.conn = conn
	return nil
}

func (h *Handle) discard() {
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	if h.db != nil {
		h.db.Close()
		h.db = nil
	}
	h.loaded = false
}

func (h *Handle) raw(fn func(c *sqlite3.SQLiteConn) error) error {
	return h.conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", driverConn)
		}
		return fn(c)
	})
}

// LoadFromBytes replaces any current instance with one hydrated from the
// serialized image. Invalid images yield CorruptSnapshot and leave the
// Handle uninitialized.
func (h *Handle) LoadFromBytes(ctx context.Context, image []byte) error {
	if !bytes.HasPrefix(image, snapshotMagic) {
		return srvErrors.NewCorruptSnapshotError("missing database header")
	}

	h.discard()
	if err := h.open(ctx); err != nil {
		return err
	}

	if err := h.raw(func(c *sqlite3.SQLiteConn) error {
		return c.Deserialize(image, "")
	}); err != nil {
		h.discard()
		return srvErrors.NewCorruptSnapshotError(err.Error())
	}

	// deserialize accepts some malformed images; a schema probe catches them
	var n int
	if err := h.conn.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		h.discard()
		return srvErrors.NewCorruptSnapshotError(err.Error())
	}

	h.loaded = true
	return nil
}

// CreateEmpty replaces any current instance with a fresh empty database.
func (h *Handle) CreateEmpty(ctx context.Context) error {
	h.discard()
	if err := h.open(ctx); err != nil {
		return err
	}
	h.loaded = true
	return nil
}

// Export serializes the full database image.
func (h *Handle) Export(ctx context.Context) ([]byte, error) {
	if !h.loaded {
		return nil, srvErrors.NewDatabaseUninitializedError()
	}

	var image []byte
	err := h.raw(func(c *sqlite3.SQLiteConn) error {
		b, err := c.Serialize("")
		if err != nil {
			return err
		}
		// the returned buffer aliases engine memory
		image = append([]byte(nil), b...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("serialize database: %w", err)
	}
	return image, nil
}

// Run executes a statement batch without collecting results. Batches are not
// implicitly transactional: a failure may leave earlier statements applied.
// Arguments are only valid for single-statement text.
func (h *Handle) Run(ctx context.Context, sqlText string, args ...any) error {
	if !h.loaded {
		return srvErrors.NewDatabaseUninitializedError()
	}
	if _, err := h.conn.ExecContext(ctx, sqlText, args...); err != nil {
		return srvErrors.NewQueryFailureError(err)
	}
	return nil
}

// Query executes a statement and collects its result set.
func (h *Handle) Query(ctx context.Context, sqlText string, args ...any) (*ResultSet, error) {
	if !h.loaded {
		return nil, srvErrors.NewDatabaseUninitializedError()
	}

	rows, err := h.conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, srvErrors.NewQueryFailureError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, srvErrors.NewQueryFailureError(err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, srvErrors.NewQueryFailureError(err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		result.Values = append(result.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, srvErrors.NewQueryFailureError(err)
	}
	return result, nil
}

// Close releases the engine instance. The Handle returns to Uninitialized.
func (h *Handle) Close() error {
	h.discard()
	return nil
}
