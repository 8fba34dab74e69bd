package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/hashicorp-forge/switchboard/internal/cmd"
)

func main() {
	// A missing .env file is fine; the environment may be set already.
	_ = godotenv.Load()

	os.Exit(cmd.Main(os.Args))
}
