// sourcekey-gen issues source keys for devsink deployments that enforce
// authentication.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/predatorx7/logship/pkg/auth"
)

func main() {
	sourceID := flag.String("source", "", "Source ID to issue a key for")
	secret := flag.String("secret", "", "Master secret key (or use AUTH_SECRET env var)")
	flag.Parse()

	if *sourceID == "" {
		fmt.Println("Usage: sourcekey-gen -source <sourceID> [-secret <secret>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	secretKey := *secret
	if secretKey == "" {
		secretKey = os.Getenv("AUTH_SECRET")
	}
	if secretKey == "" {
		log.Fatal("Error: Secret is required via -secret flag or AUTH_SECRET env var")
	}

	key := auth.Issue(*sourceID, []byte(secretKey))
	fmt.Printf("Issued source key for '%s':\n%s\n", *sourceID, key)
}
