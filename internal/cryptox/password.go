// Package cryptox implements salted password hashing.
//
// A stored credential is a Digest: the method tag, the base64 salt and the
// base64 derived key. The method tag carries the KDF parameters so old rows
// keep verifying after the defaults change, e.g.
//
//	argon2id$m=65536,t=1,p=4
//	pbkdf2-sha256$i=100000
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/enigma/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	MethodArgon2id     = "argon2id"
	MethodPBKDF2SHA256 = "pbkdf2-sha256"

	SaltLength = 16
	KeyLength  = 32
)

// Verification refuses parameters above these bounds.
const (
	maxArgonMemoryKiB = 1 << 20
	maxArgonTime      = 16
	maxPBKDF2Iter     = 10_000_000
)

// Digest is what gets persisted next to a user row.
type Digest struct {
	Method string
	Salt   string
	Hash   string
}

type Argon2Params struct {
	MemoryKiB uint32
	Time      uint32
	Threads   uint8
}

// DefaultArgon2Params matches the RFC 9106 second recommended option.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{MemoryKiB: 64 * 1024, Time: 1, Threads: 4}
}

func (p Argon2Params) method() string {
	return fmt.Sprintf("%s$m=%d,t=%d,p=%d", MethodArgon2id, p.MemoryKiB, p.Time, p.Threads)
}

// Hasher hashes new passwords with argon2id and verifies any supported method.
type Hasher struct {
	params Argon2Params
}

func NewHasher(p Argon2Params) *Hasher {
	return &Hasher{params: p}
}

func DefaultHasher() *Hasher {
	return NewHasher(DefaultArgon2Params())
}

// Method is the tag written for new hashes.
func (h *Hasher) Method() string {
	return h.params.method()
}

func (h *Hasher) Hash(password string) (Digest, error) {
	if password == "" {
		return Digest{}, fmt.Errorf("%w: empty password", common.ErrValidation)
	}
	salt := common.GenerateRandByteArray(SaltLength)
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, KeyLength)
	return Digest{
		Method: h.Method(),
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Hash:   base64.StdEncoding.EncodeToString(key),
	}, nil
}

// Verify returns nil when password matches d, common.ErrPasswordIncorrect on
// mismatch, common.ErrInvalidPasswordSalt when salt or hash cannot be decoded
// and common.ErrUnknownHashMethod for an unrecognised tag.
func (h *Hasher) Verify(password string, d Digest) error {
	salt, err := base64.StdEncoding.DecodeString(d.Salt)
	if err != nil || len(salt) == 0 {
		return common.ErrInvalidPasswordSalt
	}
	want, err := base64.StdEncoding.DecodeString(d.Hash)
	if err != nil || len(want) == 0 {
		return common.ErrInvalidPasswordSalt
	}

	got, err := derive(d.Method, []byte(password), salt, uint32(len(want)))
	if err != nil {
		return err
	}
	defer common.WipeByteArray(got)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return common.ErrPasswordIncorrect
	}
	return nil
}

// NeedsUpgrade reports whether a digest stored under method should be
// re-hashed with the current default.
func (h *Hasher) NeedsUpgrade(method string) bool {
	return method != h.Method()
}

// HashPBKDF2 produces a legacy pbkdf2-sha256 digest. Kept for importing
// credentials from older deployments.
func HashPBKDF2(password string, iterations int) Digest {
	salt := common.GenerateRandByteArray(SaltLength)
	key := pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)
	return Digest{
		Method: fmt.Sprintf("%s$i=%d", MethodPBKDF2SHA256, iterations),
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Hash:   base64.StdEncoding.EncodeToString(key),
	}
}

func derive(method string, password, salt []byte, keyLen uint32) ([]byte, error) {
	name, params, _ := strings.Cut(method, "$")

	switch name {
	case MethodArgon2id:
		var m, t uint32
		var p uint8
		if _, err := fmt.Sscanf(params, "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
			return nil, common.ErrUnknownHashMethod
		}
		if m == 0 || m > maxArgonMemoryKiB || t == 0 || t > maxArgonTime || p == 0 {
			return nil, common.ErrUnknownHashMethod
		}
		return argon2.IDKey(password, salt, t, m, p, keyLen), nil

	case MethodPBKDF2SHA256:
		var iter int
		if _, err := fmt.Sscanf(params, "i=%d", &iter); err != nil {
			return nil, common.ErrUnknownHashMethod
		}
		if iter <= 0 || iter > maxPBKDF2Iter {
			return nil, common.ErrUnknownHashMethod
		}
		return pbkdf2.Key(password, salt, iter, int(keyLen), sha256.New), nil
	}

	return nil, common.ErrUnknownHashMethod
}
