// Package keystore encrypts reference coefficient vectors before they reach
// the database. The vectors are not cryptographic keys themselves, but
// leaking one lets an attacker strip the matching watermark, so they are
// sealed at rest.
package keystore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

type Store struct {
	key [keySize]byte
}

// Open loads the secretbox key from path, generating and persisting a fresh
// one on first run so sealed vectors stay readable across restarts.
func Open(path string) (*Store, error) {
	s := &Store{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if _, err := rand.Read(s.key[:]); err != nil {
			return nil, fmt.Errorf("keystore: generate key: %w", err)
		}
		if err := os.WriteFile(path, s.key[:], 0600); err != nil {
			return nil, fmt.Errorf("keystore: write key file: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: read key file: %w", err)
	}
	if len(data) != keySize {
		return nil, fmt.Errorf("keystore: key file %s: want %d bytes, got %d", path, keySize, len(data))
	}
	copy(s.key[:], data)
	return s, nil
}

// Seal encrypts a reference coefficient vector. The random nonce is prepended
// to the box.
func (s *Store) Seal(vec []float64) ([]byte, error) {
	msg, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("keystore: encode vector: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("keystore: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], msg, &nonce, &s.key), nil
}

// Unseal decrypts a vector previously produced by Seal.
func (s *Store) Unseal(blob []byte) ([]float64, error) {
	if len(blob) < nonceSize {
		return nil, errors.New("keystore: sealed blob too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])
	msg, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("keystore: decrypt failed")
	}
	var vec []float64
	if err := json.Unmarshal(msg, &vec); err != nil {
		return nil, fmt.Errorf("keystore: decode vector: %w", err)
	}
	return vec, nil
}
