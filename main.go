// Package main provides the entry point for the pnl-csv CLI application.
package main

import (
	"os"
	"path/filepath"

	"bkowalczyk/pnl-csv/cmd/process"
	"bkowalczyk/pnl-csv/cmd/rates"
	"bkowalczyk/pnl-csv/cmd/root"
	"bkowalczyk/pnl-csv/cmd/rules"
	"bkowalczyk/pnl-csv/cmd/save"

	"github.com/joho/godotenv"
)

func init() {
	loadEnvSilently()

	root.Init()

	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(save.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(rates.Cmd)
}

// loadEnvSilently loads environment variables before any logging is
// configured. Missing .env files are not an error.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
