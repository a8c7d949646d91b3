package cache

import (
	"context"

	"github.com/driftlabs/driftsync/internal/fsx"
)

// List returns every tracked node of a sync ordered by relative path.
// Lexicographic order puts each directory before its descendants, so a
// caller can rebuild the tree in one pass.
func (d *DB) List(ctx context.Context, configID string) (entries []Row, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT config_id, rel_path, is_dir, size, mtime, crc, valid, fsid
		FROM tracked_nodes WHERE config_id = ?
		ORDER BY rel_path
	`, configID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Replace swaps the stored node set of a sync for the given rows in one
// transaction. Rows are stored under configID regardless of what their
// own ConfigID field says.
func (d *DB) Replace(ctx context.Context, configID string, entries []Row) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM tracked_nodes WHERE config_id = ?`, configID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracked_nodes (
			config_id, rel_path, is_dir, size, mtime, crc, valid, fsid
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, entry := range entries {
		_, err := stmt.ExecContext(ctx, configID, entry.RelPath, boolToInt(entry.IsDir),
			entry.Size, entry.MTime, entry.CRC, boolToInt(entry.Valid), int64(entry.FSID))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Delete drops every tracked node of a sync.
func (d *DB) Delete(ctx context.Context, configID string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM tracked_nodes WHERE config_id = ?`, configID)
	return err
}

func scanRow(scanner interface {
	Scan(dest ...interface{}) error
}) (Row, error) {
	var row Row
	var isDir, valid int
	var fsid int64
	err := scanner.Scan(&row.ConfigID, &row.RelPath, &isDir, &row.Size, &row.MTime, &row.CRC, &valid, &fsid)
	if err != nil {
		return Row{}, err
	}
	row.IsDir = isDir != 0
	row.Valid = valid != 0
	row.FSID = fsx.ID(uint64(fsid))
	return row, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
