package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSysCredEncodeDecodeRoundtrip(t *testing.T) {
	cred := AuthSysCred{Stamp: 42, MachineName: "testhost", UID: 500, GID: 500, Gids: []uint32{500, 501}}
	encoded := cred.EncodeXDR()
	decoded, err := DecodeAuthSysCred(encoded)
	require.NoError(t, err)

	assert.Equal(t, cred.Stamp, decoded.Stamp)
	assert.Equal(t, cred.MachineName, decoded.MachineName)
	assert.Equal(t, cred.UID, decoded.UID)
	assert.Equal(t, cred.GID, decoded.GID)
	assert.Equal(t, cred.Gids, decoded.Gids)
}

func TestAuthSysCredHasUID(t *testing.T) {
	cred := AuthSysCred{UID: 1000}
	assert.True(t, cred.HasUID(1000))
	assert.False(t, cred.HasUID(2000))
}

func TestAuthSysCredHasGIDPrimary(t *testing.T) {
	cred := AuthSysCred{GID: 1000}
	assert.True(t, cred.HasGID(1000))
	assert.False(t, cred.HasGID(2000))
}

func TestAuthSysCredHasGIDSupplementary(t *testing.T) {
	cred := AuthSysCred{GID: 1000, Gids: []uint32{1001, 1002}}
	assert.True(t, cred.HasGID(1001))
	assert.True(t, cred.HasGID(1002))
	assert.False(t, cred.HasGID(1003))
}

func TestAuthSysCredIsRoot(t *testing.T) {
	assert.True(t, AuthSysCred{UID: 0}.IsRoot())
	assert.False(t, AuthSysCred{UID: 1000}.IsRoot())
}

func TestDecodeAuthSysCredTooManyGids(t *testing.T) {
	cred := AuthSysCred{Gids: make([]uint32, AuthSysMaxGids+1)}
	_, err := DecodeAuthSysCred(cred.EncodeXDR())
	assert.Error(t, err)
}

func TestDecodeAuthSysCredTruncated(t *testing.T) {
	_, err := DecodeAuthSysCred([]byte{0, 0, 0, 1})
	assert.Error(t, err)
}

func TestDecodeAuthCredNone(t *testing.T) {
	cred := DecodeAuthCred(uint32(AuthFlavorNone), nil)
	assert.Equal(t, AuthCredNone, cred.Kind)
}

func TestDecodeAuthCredSys(t *testing.T) {
	sys := AuthSysCred{UID: 1000, GID: 1000}
	cred := DecodeAuthCred(uint32(AuthFlavorSys), sys.EncodeXDR())
	require.Equal(t, AuthCredSys, cred.Kind)
	assert.Equal(t, uint32(1000), cred.Sys.UID)
}

func TestDecodeAuthCredUnknown(t *testing.T) {
	cred := DecodeAuthCred(99, nil)
	assert.Equal(t, AuthCredUnknown, cred.Kind)
	assert.Equal(t, uint32(99), cred.UnknownFlavor)
}

func TestAuthCredUIDGID(t *testing.T) {
	none := AuthCred{Kind: AuthCredNone}
	assert.Equal(t, nobodyUID, none.UID())
	assert.Equal(t, nobodyGID, none.GID())

	sys := DecodeAuthCred(uint32(AuthFlavorSys), AuthSysCred{UID: 500, GID: 600}.EncodeXDR())
	assert.Equal(t, uint32(500), sys.UID())
	assert.Equal(t, uint32(600), sys.GID())
}

func TestAuthCredIsRoot(t *testing.T) {
	assert.False(t, (AuthCred{Kind: AuthCredNone}).IsRoot())

	sys := DecodeAuthCred(uint32(AuthFlavorSys), AuthSysCred{UID: 0, GID: 0}.EncodeXDR())
	assert.True(t, sys.IsRoot())
}

func TestTokenPermissionsConstructors(t *testing.T) {
	assert.Equal(t, TokenPermissions{Read: true}, ReadOnlyPermissions())
	assert.Equal(t, TokenPermissions{Read: true, Write: true}, ReadWritePermissions())
	assert.Equal(t, TokenPermissions{Read: true, Write: true, Admin: true}, AdminPermissions())
}

func TestAuthTokenIsExpired(t *testing.T) {
	token := NewAuthToken("abc", 1, 1, "u").WithExpiry(100)
	assert.False(t, token.IsExpired(50))
	assert.False(t, token.IsExpired(100))
	assert.True(t, token.IsExpired(101))
}

func TestAuthTokenNeverExpires(t *testing.T) {
	token := NewAuthToken("abc", 1, 1, "u")
	assert.False(t, token.IsExpired(^uint64(0)))
}

func TestAuthTokenPermissionHelpers(t *testing.T) {
	token := NewAuthToken("abc", 1, 1, "u").WithPermissions(ReadWritePermissions())
	assert.True(t, token.CanRead())
	assert.True(t, token.CanWrite())
	assert.False(t, token.CanAdmin())
}

func TestTokenAuthRegisterValidate(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "user1"))

	assert.True(t, auth.Exists("token1"))
	token, ok := auth.Validate("token1", 0)
	assert.True(t, ok)
	assert.Equal(t, uint32(1000), token.UID)
}

func TestTokenAuthValidateExpired(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "user1").WithExpiry(100))

	_, ok := auth.Validate("token1", 101)
	assert.False(t, ok)
}

func TestTokenAuthValidateUnknown(t *testing.T) {
	auth := NewTokenAuth()
	_, ok := auth.Validate("nonexistent", 0)
	assert.False(t, ok)
}

func TestTokenAuthRevoke(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "user1"))

	assert.True(t, auth.Revoke("token1"))
	assert.False(t, auth.Exists("token1"))
	assert.False(t, auth.Revoke("token1"))
}

func TestTokenAuthTokensForUser(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "user1"))
	auth.Register(NewAuthToken("token2", 1000, 100, "user1"))
	auth.Register(NewAuthToken("token3", 2000, 100, "user2"))

	assert.Len(t, auth.TokensForUser(1000), 2)
}

func TestTokenAuthValidCount(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "u").WithExpiry(1000))
	auth.Register(NewAuthToken("token2", 1000, 100, "u").WithExpiry(2000))
	auth.Register(NewAuthToken("token3", 1000, 100, "u").WithExpiry(500))

	assert.Equal(t, 2, auth.ValidCount(600))
	assert.Equal(t, 1, auth.ValidCount(1500))
	assert.Equal(t, 0, auth.ValidCount(2500))
}

func TestTokenAuthCleanupExpired(t *testing.T) {
	auth := NewTokenAuth()
	auth.Register(NewAuthToken("token1", 1000, 100, "u").WithExpiry(100))
	auth.Register(NewAuthToken("token2", 1000, 100, "u").WithExpiry(200))
	auth.Register(NewAuthToken("token3", 1000, 100, "u").WithExpiry(0))

	removed := auth.CleanupExpired(150)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, auth.ValidCount(199))
}

func TestGenerateToken(t *testing.T) {
	assert.Equal(t, "0000000000003039000003e8", GenerateToken(1000, 12345))
}
