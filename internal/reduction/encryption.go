package reduction

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/claudefs/claudefs/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptionKey is a 256-bit AEAD key. The zero value is never used as a
// real key; callers obtain keys via RandomKey or DeriveChunkKey.
type EncryptionKey struct {
	bytes [32]byte
}

// NewEncryptionKey builds a key from raw bytes, which must be exactly 32
// bytes long.
func NewEncryptionKey(raw []byte) (EncryptionKey, error) {
	var k EncryptionKey
	if len(raw) != 32 {
		return k, errors.NewError(errors.ErrCodeInvalidArgument, "encryption key must be 32 bytes")
	}
	copy(k.bytes[:], raw)
	return k, nil
}

// Algorithm selects the AEAD cipher used to protect a chunk.
type Algorithm uint8

const (
	AlgoAESGCM256 Algorithm = iota
	AlgoChaCha20Poly1305
)

const nonceSize = 12

// EncryptedChunk is ciphertext (with its AEAD tag appended) plus the nonce
// and algorithm needed to decrypt it.
type EncryptedChunk struct {
	Ciphertext []byte
	Nonce      [nonceSize]byte
	Algo       Algorithm
}

func aeadFor(algo Algorithm, key EncryptionKey) (cipher.AEAD, error) {
	switch algo {
	case AlgoAESGCM256:
		block, err := aes.NewCipher(key.bytes[:])
		if err != nil {
			return nil, errors.NewError(errors.ErrCodeInvalidArgument, "aes key setup failed").WithCause(err)
		}
		return cipher.NewGCM(block)
	case AlgoChaCha20Poly1305:
		return chacha20poly1305.New(key.bytes[:])
	default:
		return nil, errors.NewError(errors.ErrCodeInvalidArgument, "unknown AEAD algorithm")
	}
}

// Encrypt seals plaintext under key using algo. A fresh cryptographically
// random nonce is generated for every call.
func Encrypt(plaintext []byte, key EncryptionKey, algo Algorithm) (EncryptedChunk, error) {
	aead, err := aeadFor(algo, key)
	if err != nil {
		return EncryptedChunk{}, err
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return EncryptedChunk{}, errors.NewError(errors.ErrCodeInvalidArgument, "nonce generation failed").WithCause(err)
	}
	ct := aead.Seal(nil, nonce[:], plaintext, nil)
	return EncryptedChunk{Ciphertext: ct, Nonce: nonce, Algo: algo}, nil
}

// Decrypt opens an EncryptedChunk under key, authenticating the AEAD tag.
// Any tamper, truncation, wrong key, or algorithm mismatch returns
// ErrCodeDecryptionAuthFailed without revealing which.
func Decrypt(chunk EncryptedChunk, key EncryptionKey) ([]byte, error) {
	aead, err := aeadFor(chunk.Algo, key)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, chunk.Nonce[:], chunk.Ciphertext, nil)
	if err != nil {
		return nil, errors.NewError(errors.ErrCodeDecryptionAuthFailed, "decryption authentication failed")
	}
	return plain, nil
}

// encodeEncryptedChunk packs an EncryptedChunk into a flat byte slice for
// storage: 1-byte algo, 12-byte nonce, then ciphertext.
func encodeEncryptedChunk(c EncryptedChunk) []byte {
	out := make([]byte, 1+nonceSize+len(c.Ciphertext))
	out[0] = byte(c.Algo)
	copy(out[1:1+nonceSize], c.Nonce[:])
	copy(out[1+nonceSize:], c.Ciphertext)
	return out
}

// decodeEncryptedChunk reverses encodeEncryptedChunk.
func decodeEncryptedChunk(buf []byte) (EncryptedChunk, error) {
	if len(buf) < 1+nonceSize {
		return EncryptedChunk{}, errors.NewError(errors.ErrCodeFrameTruncated, "encrypted chunk header truncated")
	}
	var c EncryptedChunk
	c.Algo = Algorithm(buf[0])
	copy(c.Nonce[:], buf[1:1+nonceSize])
	c.Ciphertext = append([]byte(nil), buf[1+nonceSize:]...)
	return c, nil
}
