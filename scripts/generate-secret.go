// Package main is a development utility that generates the two secrets the
// server needs: a JWT signing secret and a 32-byte token cipher key. It
// prints ready-to-export environment variable assignments. Generate fresh
// values per environment; never reuse the development secrets in production.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
)

func randomHex(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(buf)
}

func main() {
	fmt.Println("==========================================================")
	fmt.Println("App Catalog secrets")
	fmt.Println("==========================================================")
	fmt.Printf("\nexport JWT_SECRET=%s\n", randomHex(32))
	// AES-256 wants exactly 32 key bytes; hex of 16 random bytes gives a
	// 32-character ASCII key.
	fmt.Printf("export TOKEN_CIPHER_KEY=%s\n", randomHex(16))
	fmt.Println("\n==========================================================")
}
