package oauth

import (
	"os"
	"path/filepath"

	"github.com/bluesky-go/atproto/internal/atcryptutil"
)

// FileSecureStorage is the default (optional) SecureStorage backend: one
// AES-256-GCM-encrypted file per key, under dir. Applications with access
// to a platform keystore (Keychain, Credential Manager, …) should supply
// their own implementation instead. The bundled CLI does not use it.
type FileSecureStorage struct {
	dir string
	key [32]byte
}

// NewFileSecureStorage constructs a FileSecureStorage rooted at dir,
// encrypting blobs with encryptionKey (must be exactly 32 bytes).
func NewFileSecureStorage(dir string, encryptionKey [32]byte) *FileSecureStorage {
	return &FileSecureStorage{dir: dir, key: encryptionKey}
}

func (s *FileSecureStorage) path(key string) string {
	return filepath.Join(s.dir, key+".bin")
}

// Get reads and decrypts the blob for key. A missing file is reported as
// (nil, nil), matching SecureStorage's "empty means absent" contract.
func (s *FileSecureStorage) Get(key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return atcryptutil.Decrypt(raw, s.key[:])
}

// Set encrypts value and writes it for key, creating dir if needed.
func (s *FileSecureStorage) Set(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	ciphertext, err := atcryptutil.Encrypt(value, s.key[:])
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), ciphertext, 0o600)
}

// Delete removes the blob for key. A no-op if it does not exist.
func (s *FileSecureStorage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
