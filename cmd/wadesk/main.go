package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "wadesk",
	Short: "wadesk - WhatsApp business dashboard in the terminal",
	Long: `wadesk manages contacts, chats, broadcast campaigns and message templates
against the wadesk REST API. Session and cached data are kept in a local
state file between runs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wadesk %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default ~/.wadesk/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(stateCmd)
}

func main() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		os.Exit(1)
	}
}
