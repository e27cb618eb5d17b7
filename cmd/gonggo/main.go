package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gonggo",
	Short: "Reconstruct LH housing announcement PDFs into structured documents",
	Long: `gonggo crawls LH rental-housing announcements, extracts text and table
primitives from their PDF attachments, and reconstructs each document
into a hierarchical section tree with merged multi-page tables.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
