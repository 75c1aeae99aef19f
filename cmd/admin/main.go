package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phportfolio-admin",
	Short: "Maintenance commands for the portfolio database",
	Long: `Maintenance commands that operate on the stored theme and portfolio documents.
A running API keeps its own in-memory copy; restart it after changing data here.`,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
