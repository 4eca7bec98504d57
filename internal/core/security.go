// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id cost settings a hash is derived with.
type PasswordParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultPasswordParams is what new hashes use. Stored hashes with any
// other cost are upgraded on the next successful login.
var DefaultPasswordParams = PasswordParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var errMalformedHash = errors.New("malformed password hash")

// passwordHash is the decoded form of
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type passwordHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h passwordHash) matches(password string) bool {
	derived := derive(password, h.salt, h.params)
	return subtle.ConstantTimeCompare(h.key, derived) == 1
}

func (h passwordHash) outdated() bool {
	want := DefaultPasswordParams
	return h.params.Memory != want.Memory ||
		h.params.Time != want.Time ||
		h.params.Threads != want.Threads ||
		h.params.KeyLen != want.KeyLen
}

func derive(password string, salt []byte, p PasswordParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return passwordHash{}, errMalformedHash
	}
	if fields[1] != "argon2id" {
		return passwordHash{}, fmt.Errorf("unsupported algorithm %q", fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return passwordHash{}, fmt.Errorf("%w: version: %v", errMalformedHash, err)
	}
	if version != argon2.Version {
		return passwordHash{}, fmt.Errorf("argon2 version %d not supported", version)
	}

	var h passwordHash
	if _, err := fmt.Sscanf(
		fields[3], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Time, &h.params.Threads,
	); err != nil {
		return passwordHash{}, fmt.Errorf("%w: params: %v", errMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: key: %v", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	h.params.KeyLen = uint32(len(h.key))
	//nolint:gosec // G115: same for salts
	h.params.SaltLen = uint32(len(h.salt))
	return h, nil
}

// HashPassword derives a fresh argon2id hash with DefaultPasswordParams.
func HashPassword(password string) (string, error) {
	p := DefaultPasswordParams
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return passwordHash{params: p, salt: salt, key: derive(password, salt, p)}.String(), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := parsePasswordHash(encodedHash)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// VerifyPasswordWithRehash verifies password and, when the stored hash was
// derived with other than DefaultPasswordParams, also returns a replacement.
func VerifyPasswordWithRehash(password, encodedHash string) (bool, string, error) {
	h, err := parsePasswordHash(encodedHash)
	if err != nil {
		return false, "", err
	}
	if !h.matches(password) {
		return false, "", nil
	}
	if !h.outdated() {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password is valid, the upgrade waits for next login
		return true, "", nil
	}
	return true, upgraded, nil
}

var decoyHash = sync.OnceValue(func() string {
	h, err := HashPassword("decoy-password-for-unknown-accounts")
	if err != nil {
		panic(fmt.Sprintf("security: derive decoy hash: %v", err))
	}
	return h
})

// VerifyPasswordTimingSafe costs one argon2 derivation whether or not the
// account exists. A nil or empty encodedHash always reports false.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _, _ = VerifyPasswordWithRehash(password, decoyHash()) //nolint:errcheck // decoy
		return false, "", nil
	}
	return VerifyPasswordWithRehash(password, *encodedHash)
}
