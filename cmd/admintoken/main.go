// Command admintoken prints a bearer token accepted by the admin guard when
// the service runs with ADMIN_JWT_SECRET, or revokes one through Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/trian/landing/backend/wishes-service/internal/config"
	"github.com/trian/landing/backend/wishes-service/internal/tokens"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	sub := flag.String("sub", "admin", "subject claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime (or how long a revocation is kept)")
	secret := flag.String("secret", cfg.Admin.JWTSecret, "HS256 secret (defaults to ADMIN_JWT_SECRET)")
	revoke := flag.String("revoke", "", "revoke this token instead of minting one (needs REDIS_HOST)")
	flag.Parse()

	if *revoke != "" {
		client := repository.NewRedisClient(cfg)
		if client == nil {
			logger.Fatalf("REDIS_HOST is required to revoke tokens")
		}
		defer func() { _ = client.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tokens.NewRevocations(client).Revoke(ctx, *revoke, *ttl); err != nil {
			logger.Fatalf("cannot revoke token: %v", err)
		}
		logger.Infof("token revoked for %s", *ttl)
		return
	}

	tok, err := tokens.GenerateAdminToken(*secret, *sub, *ttl)
	if err != nil {
		logger.Fatalf("cannot mint admin token: %v", err)
	}
	fmt.Println(tok)
}
