package db

import (
	"database/sql"

	"github.com/ypk/neurostamp/internal/model"
)

func CreateUser(database *sql.DB, u *model.User) error {
	_, err := database.Exec(
		`INSERT INTO users (id, username, password_hash, stamp_uid) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.StampUID,
	)
	return err
}

func GetUserByUsername(database *sql.DB, username string) (*model.User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, password_hash, stamp_uid, created_at FROM users WHERE username = ?`, username,
	))
}

func GetUserByID(database *sql.DB, id string) (*model.User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, password_hash, stamp_uid, created_at FROM users WHERE id = ?`, id,
	))
}

func GetUserByStampUID(database *sql.DB, uid string) (*model.User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, password_hash, stamp_uid, created_at FROM users WHERE stamp_uid = ?`, uid,
	))
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var createdAt SQLiteTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.StampUID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	u.CreatedAt = createdAt.Time
	return u, err
}
