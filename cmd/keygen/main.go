package main

import (
	"fmt"
	"os"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/auth"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
)

func main() {
	// Load .env from project root
	config.LoadEnv()

	if len(os.Args) < 3 {
		fmt.Println("Usage: keygen <siteID> <name>")
		os.Exit(1)
	}
	siteID, name := os.Args[1], os.Args[2]

	cfg, err := config.Read("")
	if err == nil {
		err = cfg.Auth.ValidateAPIKeys()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	apiKey := auth.New(cfg.Auth).GenerateHMACKey(siteID, name)
	fmt.Printf("Generated Key for %s (%s):\n%s\n", name, siteID, apiKey)
}
