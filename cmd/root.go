package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"kakeibo/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "kakeibo",
	Short: "Kakeibo OCR - Japanese receipt text extraction over HTTP",
	Long: `Kakeibo OCR bridges a spreadsheet automation script and an OCR engine.

The serve command exposes a single endpoint that accepts a base64-encoded
image as JSON and returns the recognized Japanese text. The ocr command runs
the same engine on a local file.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Kakeibo OCR executed")

		fmt.Println("Welcome to Kakeibo OCR!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
