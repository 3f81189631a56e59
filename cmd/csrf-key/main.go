package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/primarycell/assessment/pkg/csrf"
)

func main() {
	// Flags for customization
	outPath := flag.String("out", "./keys/csrf.key", "Path to write the CSRF secret")
	force := flag.Bool("force", false, "Overwrite an existing secret file")
	mint := flag.Bool("token", false, "Also mint a token signed with the secret")
	issuer := flag.String("issuer", "assessment.primarycell.health", "Token issuer (with -token)")
	ttl := flag.Duration("ttl", csrf.DefaultTTL, "Token lifetime (with -token)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if _, err := os.Stat(*outPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Secret file %s already exists (use -force to overwrite)\n", *outPath)
		os.Exit(1)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error checking %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	secret, err := csrf.GenerateSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating secret: %v\n", err)
		os.Exit(1)
	}
	if err := csrf.WriteSecretFile(*outPath, secret); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing secret: %v\n", err)
		os.Exit(1)
	}

	var token string
	var expiresAt time.Time
	if *mint {
		svc, err := csrf.NewService(csrf.Config{
			Secret: []byte(secret),
			TTL:    *ttl,
			Issuer: *issuer,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CSRF service: %v\n", err)
			os.Exit(1)
		}
		token, expiresAt, err = svc.Issue()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
			os.Exit(1)
		}
	}

	if *outputJSON {
		output := map[string]any{
			"secret_file": *outPath,
		}
		if token != "" {
			output["csrf_token"] = token
			output["expires_at"] = expiresAt.Format(time.RFC3339)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	fmt.Println("CSRF Secret Generated")
	fmt.Println("=====================")
	fmt.Printf("File:     %s\n", *outPath)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  CSRF_SECRET_FILE=%s go run ./cmd/server\n", *outPath)
	if token != "" {
		fmt.Println()
		fmt.Printf("Expires:  %s\n", expiresAt.Format(time.RFC3339))
		fmt.Println("Token:")
		fmt.Println(token)
	}
}
