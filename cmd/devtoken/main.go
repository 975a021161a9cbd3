// Command devtoken mints access tokens and password hashes for local testing.
//
//	go run ./cmd/devtoken -user 1 -email admin@foodiehub.local -role ADMIN
//	go run ./cmd/devtoken -hash 'Password123!'
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/pkg/auth"
)

func main() {
	userID := flag.Uint("user", 0, "user id to put in the token")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", "CUSTOMER", "role claim, CUSTOMER or ADMIN")
	hash := flag.String("hash", "", "hash this password instead of minting a token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if *hash != "" {
		passwords := auth.NewPasswordManager(cfg.Security.BcryptCost)
		hashed, err := passwords.HashPassword(*hash)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to hash password")
		}
		if err := passwords.VerifyPassword(*hash, hashed); err != nil {
			logrus.WithError(err).Fatal("Hash verification failed")
		}
		fmt.Println(hashed)
		return
	}

	if *userID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(cfg.JWT, cfg.App.Name).GenerateAccessToken(*userID, *email, *role)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to sign token")
	}
	fmt.Println(token)
}
