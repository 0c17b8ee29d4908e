// Package main provides the entry point for the NexWork API server and its
// maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexwork",
	Short: "NexWork job marketplace API server",
	Long:  "NexWork connects recruiters and job seekers and screens candidates with an automated voice and coding interview before a human ever looks at them.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
