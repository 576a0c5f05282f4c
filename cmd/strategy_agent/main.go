// Package main provides the entry point for the content strategy service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "strategy_agent",
	Short: "Content Strategy Generation Service",
	Long:  "Generates a content strategy, video shot list, and caption copy from a product briefing and a creator profile, and saves the result to a Feishu spreadsheet.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
