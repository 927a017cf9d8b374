package model

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string
	// StampUID is the public identity embedded in watermark payloads and
	// fed to the codec as its permutation secret.
	StampUID  string
	CreatedAt time.Time
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RegistryEntry binds a perceptual fingerprint to the stamp identity that
// first claimed it.
type RegistryEntry struct {
	Fingerprint string
	OwnerUID    string
	CreatedAt   time.Time
}

// StampKey holds the encrypted reference coefficient vector for one
// watermarking event, keyed by owner and image fingerprint so every stamped
// image stays verifiable.
type StampKey struct {
	ID          string
	OwnerUID    string
	Fingerprint string
	KeyBlob     []byte
	CreatedAt   time.Time
}
