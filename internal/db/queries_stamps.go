package db

import (
	"database/sql"

	"github.com/ypk/neurostamp/internal/model"
)

// ListStampKeys returns all stamp keys held by an owner, most recent first.
func ListStampKeys(database *sql.DB, ownerUID string) ([]model.StampKey, error) {
	rows, err := database.Query(
		`SELECT id, owner_uid, fingerprint, key_blob, created_at FROM stamp_keys
		 WHERE owner_uid = ? ORDER BY created_at DESC`, ownerUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []model.StampKey
	for rows.Next() {
		var k model.StampKey
		var createdAt SQLiteTime
		if err := rows.Scan(&k.ID, &k.OwnerUID, &k.Fingerprint, &k.KeyBlob, &createdAt); err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt.Time
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func CountStampKeys(database *sql.DB, ownerUID string) (int, error) {
	var n int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM stamp_keys WHERE owner_uid = ?`, ownerUID,
	).Scan(&n)
	return n, err
}
