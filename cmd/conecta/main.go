package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var Version = "dev"

func main() {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
