package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	initListen    string
	initDatabase  string
	initAPIURL    string
	initJWTSecret string
	initOutput    string
	initForce     bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Interactive wizard that writes a configuration file usable by both
wadesk-server and the wadesk client. A JWT signing secret is generated
when none is given.

Examples:
  # Interactive mode - prompts for missing values
  wadesk-server init

  # Non-interactive
  wadesk-server init --listen :9090 --database /var/lib/wadesk/wadesk.db -o wadesk.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initListen, "listen", "", "Listen address (default :8080)")
	initCmd.Flags().StringVar(&initDatabase, "database", "", "SQLite database path (default ./wadesk.db)")
	initCmd.Flags().StringVar(&initAPIURL, "api-url", "", "API base URL clients use (default derived from --listen)")
	initCmd.Flags().StringVar(&initJWTSecret, "jwt-secret", "", "JWT signing secret (auto-generated if not provided)")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "wadesk.yaml", "Output configuration file path")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("wadesk Configuration Wizard")
	fmt.Println("===========================")
	fmt.Println()

	if initListen == "" {
		initListen = prompt(reader, "Listen address", ":8080")
	}
	if initDatabase == "" {
		initDatabase = prompt(reader, "Database path", "./wadesk.db")
	}
	if initAPIURL == "" {
		initAPIURL = prompt(reader, "API base URL", defaultAPIURL(initListen))
	}

	if initJWTSecret == "" {
		initJWTSecret = generateRandomString(48)
		fmt.Println("  Generated JWT secret")
	}
	if len(initJWTSecret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters")
	}

	if !initForce {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", initOutput)
		}
	}

	if dir := filepath.Dir(initOutput); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file holds the signing secret
	if err := os.WriteFile(initOutput, []byte(generateConfig()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration written to %s\n", initOutput)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  wadesk-server -c %s seed\n", initOutput)
	fmt.Printf("  wadesk-server -c %s serve\n", initOutput)
	fmt.Printf("  wadesk -c %s login %s\n", initOutput, demoEmail)
	return nil
}

func prompt(reader *bufio.Reader, question, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", question, defaultValue)
	} else {
		fmt.Printf("%s: ", question)
	}

	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue
	}
	return answer
}

// defaultAPIURL turns a listen address into a URL on localhost
func defaultAPIURL(listen string) string {
	host, port := "localhost", "8080"
	if i := strings.LastIndex(listen, ":"); i >= 0 {
		if h := listen[:i]; h != "" && h != "0.0.0.0" {
			host = h
		}
		if p := listen[i+1:]; p != "" {
			port = p
		}
	}
	return "http://" + host + ":" + port
}

func generateRandomString(length int) string {
	bytes := make([]byte, (length+1)/2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}

func generateConfig() string {
	var sb strings.Builder

	sb.WriteString("# wadesk configuration\n\n")

	sb.WriteString("api:\n")
	sb.WriteString(fmt.Sprintf("  base_url: %q\n", initAPIURL))
	sb.WriteString("  timeout: 30s\n\n")

	sb.WriteString("chat:\n")
	sb.WriteString("  poll_interval: 5s\n\n")

	sb.WriteString("campaigns:\n")
	sb.WriteString("  tick_interval: 1s\n\n")

	sb.WriteString("server:\n")
	sb.WriteString(fmt.Sprintf("  listen_addr: %q\n", initListen))
	sb.WriteString(fmt.Sprintf("  database_path: %q\n", initDatabase))
	sb.WriteString(fmt.Sprintf("  jwt_secret: %q\n", initJWTSecret))
	sb.WriteString("  token_ttl: 24h\n")
	sb.WriteString("  delivery_interval: 2s\n\n")

	sb.WriteString("logging:\n")
	sb.WriteString("  level: info\n")
	sb.WriteString("  format: text\n")

	return sb.String()
}
