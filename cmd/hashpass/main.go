// Command hashpass generates the bcrypt password hash used to provision the
// dashboard operator account in the gateway configuration.
package main

import (
	"fmt"
	"log"
	"os"

	"botgate/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: hashpass <password>")
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to generate password hash: %v", err)
	}

	// Verify the hash round-trips before handing it out.
	if err := auth.ValidatePassword(os.Args[1], hash); err != nil {
		log.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Println(hash)
}
