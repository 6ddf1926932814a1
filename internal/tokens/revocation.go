package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
	"github.com/trian/landing/backend/wishes-service/pkg/middleware"
)

const revokedPrefix = "revoked:admin:"

// Revocations is a Redis list of admin tokens that must no longer be accepted.
// A nil client turns every operation into a no-op.
type Revocations struct {
	client *redis.Client
}

func NewRevocations(c *redis.Client) *Revocations {
	return &Revocations{client: c}
}

// tokens are stored hashed so the list never holds usable credentials
func revokedKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

// Revoke stores raw in the list until ttl elapses.
func (r *Revocations) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Set(ctx, revokedKey(raw), "1", ttl).Err()
}

// IsRevoked reports whether raw was revoked and has not expired from the list.
func (r *Revocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedKey(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type revokingVerifier struct {
	next middleware.Verifier
	rev  *Revocations
}

// WithRevocations rejects revoked tokens before handing the rest to next.
// Tokens are also rejected when the list cannot be consulted.
func WithRevocations(next middleware.Verifier, rev *Revocations) middleware.Verifier {
	return &revokingVerifier{next: next, rev: rev}
}

func (v *revokingVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	revoked, err := v.rev.IsRevoked(ctx, raw)
	if err != nil {
		logger.Warnf("revocation lookup failed: %v", err)
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token revoked")
	}
	return v.next.Verify(ctx, raw)
}
