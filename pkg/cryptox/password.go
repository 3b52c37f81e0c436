package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the Argon2id cost parameters. They are encoded into every
// hash so verification never depends on the current configuration.
type Argon2Params struct {
	Memory      uint32 `koanf:"memory"`      // KiB
	Iterations  uint32 `koanf:"iterations"`  // time cost
	Parallelism uint8  `koanf:"parallelism"` // lanes
	SaltLength  uint32 `koanf:"saltLength"`
	KeyLength   uint32 `koanf:"keyLength"`
}

// DefaultArgon2Params matches the production defaults (64 MiB, t=3, p=1).
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// ParamsSource returns the cost parameters to use for the next hash.
type ParamsSource func() Argon2Params

var (
	ErrHashFormat   = errors.New("cryptox: invalid hash format")
	ErrHashMismatch = errors.New("cryptox: password does not match")
	ErrHashCanceled = errors.New("cryptox: hash operation canceled")
)

// Hasher produces and checks PHC-format Argon2id hashes. Params is consulted
// on every Hash call.
type Hasher struct {
	Params ParamsSource
	Pepper string
}

// NewHasher returns a Hasher reading its cost from params. A nil source uses
// DefaultArgon2Params.
func NewHasher(params ParamsSource, pepper string) *Hasher {
	if params == nil {
		params = func() Argon2Params { return DefaultArgon2Params }
	}
	return &Hasher{Params: params, Pepper: pepper}
}

func (h *Hasher) params() Argon2Params {
	p := h.Params()
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Params.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultArgon2Params.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2Params.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultArgon2Params.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultArgon2Params.KeyLength
	}
	return p
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	p := h.params()

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	key, err := h.derive(ctx, password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. Malformed hashes and
// mismatches yield false with a nil error; the only error returned is
// ErrHashCanceled when ctx ends before the comparison completes.
func (h *Hasher) Verify(ctx context.Context, encodedHash, password string) (bool, error) {
	err := h.compare(ctx, encodedHash, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrHashCanceled):
		return false, err
	default:
		return false, nil
	}
}

// compare is Verify with the failure reason kept.
func (h *Hasher) compare(ctx context.Context, encodedHash, password string) error {
	ph, err := parsePHC(encodedHash)
	if err != nil {
		return err
	}

	computed, err := h.derive(ctx, password, ph.salt, ph.iterations, ph.memory, ph.parallelism, uint32(len(ph.hash))) // #nosec G115
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(computed, ph.hash) == 1 {
		return nil
	}
	return ErrHashMismatch
}

// derive runs Argon2id off the caller's goroutine so a cancelled request is
// released promptly. A result that is already available wins over ctx.
func (h *Hasher) derive(
	ctx context.Context,
	password string,
	salt []byte,
	iterations, memory uint32,
	parallelism uint8,
	keyLen uint32,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashCanceled, err)
	}

	done := make(chan []byte, 1)
	go func() {
		done <- argon2.IDKey([]byte(password+h.Pepper), salt, iterations, memory, parallelism, keyLen)
	}()

	select {
	case key := <-done:
		return key, nil
	case <-ctx.Done():
		select {
		case key := <-done:
			return key, nil
		default:
			return nil, fmt.Errorf("%w: %w", ErrHashCanceled, ctx.Err())
		}
	}
}

type phcHash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// parsePHC parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parsePHC(encoded string) (phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phcHash{}, fmt.Errorf("%w: expected 6 parts", ErrHashFormat)
	}
	if parts[1] != "argon2id" {
		return phcHash{}, fmt.Errorf("%w: not argon2id", ErrHashFormat)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phcHash{}, fmt.Errorf("%w: wrong version", ErrHashFormat)
	}

	var ph phcHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &ph.memory, &ph.iterations, &ph.parallelism); err != nil {
		return phcHash{}, fmt.Errorf("%w: parameters: %w", ErrHashFormat, err)
	}
	if ph.memory == 0 || ph.iterations == 0 || ph.parallelism == 0 {
		return phcHash{}, fmt.Errorf("%w: zero cost parameter", ErrHashFormat)
	}

	var err error
	if ph.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(ph.salt) == 0 {
		return phcHash{}, fmt.Errorf("%w: salt", ErrHashFormat)
	}
	if ph.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(ph.hash) == 0 {
		return phcHash{}, fmt.Errorf("%w: hash", ErrHashFormat)
	}

	return ph, nil
}
