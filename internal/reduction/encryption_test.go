package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() EncryptionKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = 42
	}
	k, _ := NewEncryptionKey(raw[:])
	return k
}

func TestEncryptDecryptRoundtripAESGCM(t *testing.T) {
	key := testKey()
	data := []byte("the quick brown fox jumps over the lazy dog")

	enc, err := Encrypt(data, key, AlgoAESGCM256)
	require.NoError(t, err)

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, data, dec)
}

func TestEncryptDecryptRoundtripChaCha20(t *testing.T) {
	key := testKey()
	data := []byte("another message entirely")

	enc, err := Encrypt(data, key, AlgoChaCha20Poly1305)
	require.NoError(t, err)

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, data, dec)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	key := testKey()
	enc, err := Encrypt([]byte("secret"), key, AlgoAESGCM256)
	require.NoError(t, err)
	enc.Ciphertext[0] ^= 0xff

	_, err = Decrypt(enc, key)
	require.Error(t, err)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key := testKey()
	enc, err := Encrypt([]byte("secret"), key, AlgoAESGCM256)
	require.NoError(t, err)

	var wrongRaw [32]byte
	for i := range wrongRaw {
		wrongRaw[i] = 99
	}
	wrong, _ := NewEncryptionKey(wrongRaw[:])

	_, err = Decrypt(enc, wrong)
	require.Error(t, err)
}

func TestEncryptedChunkEncodeDecodeRoundtrip(t *testing.T) {
	key := testKey()
	enc, err := Encrypt([]byte("round trip me"), key, AlgoChaCha20Poly1305)
	require.NoError(t, err)

	buf := encodeEncryptedChunk(enc)
	decoded, err := decodeEncryptedChunk(buf)
	require.NoError(t, err)

	dec, err := Decrypt(decoded, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("round trip me"), dec)
}

func TestDecodeEncryptedChunkTruncatedHeader(t *testing.T) {
	_, err := decodeEncryptedChunk([]byte{0x00, 0x01})
	require.Error(t, err)
}
