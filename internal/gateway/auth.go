package gateway

import (
	"fmt"
	"sync"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/pkg/errors"
)

// AuthSysMaxGids is the maximum number of supplementary group IDs an
// AUTH_SYS credential may carry (RFC 1057 §9.2).
const AuthSysMaxGids = 16

const (
	nobodyUID uint32 = 65534
	nobodyGID uint32 = 65534
)

// AuthSysCred is a decoded AUTH_SYS (AUTH_UNIX) credential.
type AuthSysCred struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	Gids        []uint32
}

// DecodeAuthSysCred decodes an AUTH_SYS credential body, per RFC 1057 §9.2.
func DecodeAuthSysCred(body []byte) (AuthSysCred, error) {
	dec := codec.NewDecoder(body)

	stamp, err := dec.GetUint32()
	if err != nil {
		return AuthSysCred{}, err
	}
	machinename, err := dec.GetString(255)
	if err != nil {
		return AuthSysCred{}, err
	}
	uid, err := dec.GetUint32()
	if err != nil {
		return AuthSysCred{}, err
	}
	gid, err := dec.GetUint32()
	if err != nil {
		return AuthSysCred{}, err
	}
	gidsCount, err := dec.GetUint32()
	if err != nil {
		return AuthSysCred{}, err
	}
	if gidsCount > AuthSysMaxGids {
		return AuthSysCred{}, errors.NewError(errors.ErrCodeProtocolError, "too many gids").
			WithDetail("count", gidsCount)
	}

	gids := make([]uint32, 0, gidsCount)
	for i := uint32(0); i < gidsCount; i++ {
		g, err := dec.GetUint32()
		if err != nil {
			return AuthSysCred{}, err
		}
		gids = append(gids, g)
	}

	return AuthSysCred{Stamp: stamp, MachineName: machinename, UID: uid, GID: gid, Gids: gids}, nil
}

// EncodeXDR encodes the credential back to its AUTH_SYS wire form.
func (c AuthSysCred) EncodeXDR() []byte {
	enc := codec.NewEncoder(32 + len(c.MachineName) + 4*len(c.Gids))
	enc.PutUint32(c.Stamp)
	enc.PutString(c.MachineName)
	enc.PutUint32(c.UID)
	enc.PutUint32(c.GID)
	enc.PutUint32(uint32(len(c.Gids)))
	for _, g := range c.Gids {
		enc.PutUint32(g)
	}
	return enc.Bytes()
}

// HasUID reports whether the credential's primary uid equals uid.
func (c AuthSysCred) HasUID(uid uint32) bool { return c.UID == uid }

// HasGID reports whether gid is the credential's primary group or among
// its supplementary groups.
func (c AuthSysCred) HasGID(gid uint32) bool {
	if c.GID == gid {
		return true
	}
	for _, g := range c.Gids {
		if g == gid {
			return true
		}
	}
	return false
}

// IsRoot reports whether the credential's uid is 0.
func (c AuthSysCred) IsRoot() bool { return c.UID == 0 }

// AuthFlavorKind tags which variant an AuthCred carries.
type AuthFlavorKind int

const (
	AuthCredNone AuthFlavorKind = iota
	AuthCredSys
	AuthCredUnknown
)

// AuthCred is the decoded credential attached to an RPC call, one of
// AUTH_NONE, AUTH_SYS, or an unrecognized flavor.
type AuthCred struct {
	Kind          AuthFlavorKind
	Sys           AuthSysCred
	UnknownFlavor uint32
}

// DecodeAuthCred inspects flavor and decodes body accordingly. A
// malformed AUTH_SYS body degrades to AuthCredUnknown rather than
// propagating a decode error, matching the permissive RPC credential path.
func DecodeAuthCred(flavor uint32, body []byte) AuthCred {
	switch AuthFlavor(flavor) {
	case AuthFlavorNone:
		return AuthCred{Kind: AuthCredNone}
	case AuthFlavorSys:
		cred, err := DecodeAuthSysCred(body)
		if err != nil {
			return AuthCred{Kind: AuthCredUnknown, UnknownFlavor: uint32(AuthFlavorSys)}
		}
		return AuthCred{Kind: AuthCredSys, Sys: cred}
	default:
		return AuthCred{Kind: AuthCredUnknown, UnknownFlavor: flavor}
	}
}

// UID returns the effective uid, or the "nobody" uid for None/Unknown.
func (c AuthCred) UID() uint32 {
	if c.Kind == AuthCredSys {
		return c.Sys.UID
	}
	return nobodyUID
}

// GID returns the effective gid, or the "nobody" gid for None/Unknown.
func (c AuthCred) GID() uint32 {
	if c.Kind == AuthCredSys {
		return c.Sys.GID
	}
	return nobodyGID
}

// IsRoot reports whether the credential is an AUTH_SYS credential with uid 0.
func (c AuthCred) IsRoot() bool {
	return c.Kind == AuthCredSys && c.Sys.IsRoot()
}

// TokenPermissions is the set of operations a bearer token may perform.
type TokenPermissions struct {
	Read  bool
	Write bool
	Admin bool
}

// ReadOnlyPermissions grants read access only.
func ReadOnlyPermissions() TokenPermissions { return TokenPermissions{Read: true} }

// ReadWritePermissions grants read and write access.
func ReadWritePermissions() TokenPermissions { return TokenPermissions{Read: true, Write: true} }

// AdminPermissions grants read, write, and admin access.
func AdminPermissions() TokenPermissions { return TokenPermissions{Read: true, Write: true, Admin: true} }

// AuthToken is a bearer token issued for S3-style gateway access.
type AuthToken struct {
	Token       string
	UID         uint32
	GID         uint32
	Name        string
	Permissions TokenPermissions
	ExpiresAt   uint64
}

// NewAuthToken returns a token with no permissions and no expiry.
func NewAuthToken(token string, uid, gid uint32, name string) AuthToken {
	return AuthToken{Token: token, UID: uid, GID: gid, Name: name}
}

// WithExpiry returns a copy of t with ExpiresAt set.
func (t AuthToken) WithExpiry(expiresAt uint64) AuthToken {
	t.ExpiresAt = expiresAt
	return t
}

// WithPermissions returns a copy of t with the given permissions.
func (t AuthToken) WithPermissions(perms TokenPermissions) AuthToken {
	t.Permissions = perms
	return t
}

// IsExpired reports whether the token has expired as of now. ExpiresAt
// of 0 means the token never expires.
func (t AuthToken) IsExpired(now uint64) bool {
	return t.ExpiresAt > 0 && now > t.ExpiresAt
}

// CanRead reports whether the token grants read access.
func (t AuthToken) CanRead() bool { return t.Permissions.Read }

// CanWrite reports whether the token grants write access.
func (t AuthToken) CanWrite() bool { return t.Permissions.Write }

// CanAdmin reports whether the token grants admin access.
func (t AuthToken) CanAdmin() bool { return t.Permissions.Admin }

// TokenAuth is a bearer-token registry for S3-style gateway access.
type TokenAuth struct {
	mu     sync.Mutex
	tokens map[string]AuthToken
}

// NewTokenAuth returns an empty token registry.
func NewTokenAuth() *TokenAuth {
	return &TokenAuth{tokens: make(map[string]AuthToken)}
}

// Register adds or replaces a token.
func (a *TokenAuth) Register(token AuthToken) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[token.Token] = token
}

// Validate returns the token if it exists and has not expired as of now.
func (a *TokenAuth) Validate(token string, now uint64) (AuthToken, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tokens[token]
	if !ok || t.IsExpired(now) {
		return AuthToken{}, false
	}
	return t, true
}

// Revoke removes token, reporting whether it had been registered.
func (a *TokenAuth) Revoke(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.tokens[token]; !ok {
		return false
	}
	delete(a.tokens, token)
	return true
}

// TokensForUser returns every registered token belonging to uid.
func (a *TokenAuth) TokensForUser(uid uint32) []AuthToken {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []AuthToken
	for _, t := range a.tokens {
		if t.UID == uid {
			out = append(out, t)
		}
	}
	return out
}

// ValidCount returns the number of non-expired tokens as of now.
func (a *TokenAuth) ValidCount(now uint64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for _, t := range a.tokens {
		if !t.IsExpired(now) {
			count++
		}
	}
	return count
}

// CleanupExpired removes every token expired as of now, returning how
// many were removed.
func (a *TokenAuth) CleanupExpired(now uint64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	removed := 0
	for k, t := range a.tokens {
		if t.IsExpired(now) {
			delete(a.tokens, k)
			removed++
		}
	}
	return removed
}

// GenerateToken derives a token string from a monotonic counter and uid.
func GenerateToken(uid uint32, counter uint64) string {
	return fmt.Sprintf("%016x%08x", counter, uid)
}

// Exists reports whether token is registered, regardless of expiry.
func (a *TokenAuth) Exists(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tokens[token]
	return ok
}
