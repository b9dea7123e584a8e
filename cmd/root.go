package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lastgram",
	Short: "Telegram bot for Last.fm listening history",
	Long: `lastgram is a Telegram bot for Last.fm listening history.

It answers commands with a user's current track, recent plays and
top charts, looks up artists, albums and tracks, and attaches cover
art found through the Spotify catalog. Group chats can opt into a
shared "who is listening to what" report.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
