package db

import (
	"database/sql"
	"fmt"

	"github.com/ypk/neurostamp/internal/model"
)

func ListRegistry(database *sql.DB) ([]model.RegistryEntry, error) {
	rows, err := database.Query(
		`SELECT fingerprint, owner_uid, created_at FROM registry ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RegistryEntry
	for rows.Next() {
		var e model.RegistryEntry
		var createdAt SQLiteTime
		if err := rows.Scan(&e.Fingerprint, &e.OwnerUID, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RegisterStamp records a watermarking event: the registry claim plus the
// encrypted stamp key, in one transaction. The fuzzy duplicate scan is
// re-run inside the transaction (isDup compares two fingerprints), closing
// the window between the caller's pre-embed check and the insert. Returns the
// conflicting owner UID if a different identity already holds the cluster,
// or "" on success.
func RegisterStamp(database *sql.DB, entry *model.RegistryEntry, key *model.StampKey, isDup func(a, b string) bool) (string, error) {
	tx, err := database.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT fingerprint, owner_uid FROM registry`)
	if err != nil {
		return "", err
	}
	claimed := false
	var conflictOwner string
	for rows.Next() {
		var fp, owner string
		if err := rows.Scan(&fp, &owner); err != nil {
			rows.Close()
			return "", err
		}
		if isDup(entry.Fingerprint, fp) {
			if owner != entry.OwnerUID {
				conflictOwner = owner
			}
			claimed = true
			break
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}
	if conflictOwner != "" {
		return conflictOwner, nil
	}

	if !claimed {
		if _, err := tx.Exec(
			`INSERT INTO registry (fingerprint, owner_uid) VALUES (?, ?)`,
			entry.Fingerprint, entry.OwnerUID,
		); err != nil {
			return "", fmt.Errorf("insert registry entry: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO stamp_keys (id, owner_uid, fingerprint, key_blob) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_uid, fingerprint) DO UPDATE SET
		   key_blob = excluded.key_blob,
		   created_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key.ID, key.OwnerUID, key.Fingerprint, key.KeyBlob,
	); err != nil {
		return "", fmt.Errorf("upsert stamp key: %w", err)
	}

	return "", tx.Commit()
}
