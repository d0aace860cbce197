package reduction

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"sync"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const chunkKeyInfoPrefix = "claudefs-chunk-key"

// KeyVersion identifies one generation of the master key (KEK).
type KeyVersion uint32

// KeyManager wraps per-file data encryption keys under a rotating master
// key and derives per-chunk keys via HKDF-SHA256.
type KeyManager struct {
	mu             sync.RWMutex
	maxKeyHistory  int
	current        KeyVersion
	history        map[KeyVersion]EncryptionKey
}

// NewKeyManager seeds the manager with an initial KEK at version 1.
func NewKeyManager(initialKEK EncryptionKey, maxKeyHistory int) *KeyManager {
	if maxKeyHistory < 1 {
		maxKeyHistory = 1
	}
	return &KeyManager{
		maxKeyHistory: maxKeyHistory,
		current:       1,
		history:       map[KeyVersion]EncryptionKey{1: initialKEK},
	}
}

// Rotate installs a new KEK as the current version, keeping at most
// maxKeyHistory versions in total, the new one included. The oldest version
// beyond that window is dropped and can no longer unwrap.
func (k *KeyManager) Rotate(newKEK EncryptionKey) KeyVersion {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.current++
	k.history[k.current] = newKEK
	if len(k.history) > k.maxKeyHistory {
		oldest := k.current
		for v := range k.history {
			if v < oldest {
				oldest = v
			}
		}
		delete(k.history, oldest)
	}
	return k.current
}

// CurrentVersion returns the active KEK version.
func (k *KeyManager) CurrentVersion() KeyVersion {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current
}

// WrapDEK wraps a per-file data encryption key under the current KEK,
// returning the wrapped bytes and the KEK version used.
func (k *KeyManager) WrapDEK(dek EncryptionKey) (wrapped []byte, version KeyVersion, err error) {
	k.mu.RLock()
	kek, ok := k.history[k.current]
	version = k.current
	k.mu.RUnlock()
	if !ok {
		return nil, 0, errors.NewError(errors.ErrCodeInvalidArgument, "no active KEK")
	}
	enc, err := Encrypt(dek.bytes[:], kek, AlgoAESGCM256)
	if err != nil {
		return nil, 0, err
	}
	return encodeEncryptedChunk(enc), version, nil
}

// UnwrapDEK reverses WrapDEK, looking up the KEK by the version the wrap was
// performed under. Fails when that version has aged out of history.
func (k *KeyManager) UnwrapDEK(wrapped []byte, version KeyVersion) (EncryptionKey, error) {
	k.mu.RLock()
	kek, ok := k.history[version]
	k.mu.RUnlock()
	if !ok {
		return EncryptionKey{}, errors.NewError(errors.ErrCodeInvalidArgument, "KEK version not in history")
	}
	enc, err := decodeEncryptedChunk(wrapped)
	if err != nil {
		return EncryptionKey{}, err
	}
	plain, err := Decrypt(enc, kek)
	if err != nil {
		return EncryptionKey{}, err
	}
	var dek EncryptionKey
	copy(dek.bytes[:], plain)
	return dek, nil
}

// DeriveChunkKey derives a per-chunk key from a master/data key and a chunk
// hash via HKDF-SHA256 with the fixed "claudefs-chunk-key" info string.
func DeriveChunkKey(master EncryptionKey, hash codec.ChunkHash) (EncryptionKey, error) {
	info := make([]byte, 0, len(chunkKeyInfoPrefix)+len(hash))
	info = append(info, []byte(chunkKeyInfoPrefix)...)
	info = append(info, hash[:]...)

	reader := hkdf.New(sha256.New, master.bytes[:], nil, info)
	var out EncryptionKey
	if _, err := io.ReadFull(reader, out.bytes[:]); err != nil {
		return EncryptionKey{}, errors.NewError(errors.ErrCodeInvalidArgument, "hkdf expand failed").WithCause(err)
	}
	return out, nil
}

// RandomKey generates a cryptographically random 256-bit key, suitable as a
// KEK seed or a fresh per-file DEK.
func RandomKey() (EncryptionKey, error) {
	var k EncryptionKey
	if _, err := rand.Read(k.bytes[:]); err != nil {
		return EncryptionKey{}, errors.NewError(errors.ErrCodeInvalidArgument, "rand read failed").WithCause(err)
	}
	return k, nil
}
