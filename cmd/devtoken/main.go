// Command devtoken mints a signed identity token for local development, in
// place of the external auth service.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gamehall/internal/auth"
)

func main() {
	_ = godotenv.Load()

	var (
		uid    = flag.String("uid", "", "Player id (token subject)")
		email  = flag.String("email", "", "Player email")
		admin  = flag.Bool("admin", false, "Grant the admin capability")
		ttl    = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		secret = flag.String("secret", os.Getenv("AUTH_JWT_SECRET"), "Signing secret (defaults to AUTH_JWT_SECRET)")
		issuer = flag.String("issuer", envOr("AUTH_JWT_ISSUER", "gamehall"), "Token issuer (defaults to AUTH_JWT_ISSUER)")
	)
	flag.Parse()

	if *uid == "" {
		log.Fatal("Usage: go run ./cmd/devtoken -uid=<id> [-email=<email>] [-admin] [-ttl=24h]")
	}

	v, err := auth.NewVerifier(*secret, *issuer)
	if err != nil {
		log.Fatalf("Failed to configure signer: %v", err)
	}
	token, err := v.Issue(auth.Identity{UID: *uid, Email: *email, Admin: *admin}, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
