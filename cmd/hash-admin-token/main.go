package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Prints the bcrypt hash to put in ADMIN_TOKEN_HASH for a chosen admin key.
func main() {
	token := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		log.Fatal("usage: hash-admin-token <token> (or set ADMIN_TOKEN)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	log.Printf("ADMIN_TOKEN_HASH=%s", string(hash))
}
