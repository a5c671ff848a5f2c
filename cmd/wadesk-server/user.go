package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/foxzi/wadesk/internal/config"
	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/server"
	"github.com/foxzi/wadesk/internal/server/db"
	"github.com/foxzi/wadesk/internal/server/repository"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a new dashboard user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUserList,
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Reset user password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserResetPassword,
}

var (
	userName string
	userRole string
)

func init() {
	userCreateCmd.Flags().StringVarP(&userName, "name", "n", "", "Display name")
	userCreateCmd.Flags().StringVarP(&userRole, "role", "r", string(models.RoleAgent), "Role: admin, manager or agent")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userResetPasswordCmd)
}

func openDatabase() (*db.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.Server.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// readPassword prompts twice and checks both entries match
func readPassword() (string, error) {
	fmt.Print("Enter password: ")
	pwBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	pwBytes2, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	password := string(pwBytes)
	if password != string(pwBytes2) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < server.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", server.MinPasswordLength)
	}
	return password, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email := args[0]

	role := models.Role(userRole)
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s", userRole)
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	users := repository.NewUserRepository(database.DB)
	existing, _, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("user %s already exists", email)
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	hash, err := server.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	name := userName
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	u := &models.User{Name: name, Email: email, Role: role}
	if err := users.Create(u, hash); err != nil {
		return err
	}

	fmt.Printf("User %s created successfully (ID: %s)\n", u.Email, u.ID)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := database.Query("SELECT id, email, name, role, created_at FROM users ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Printf("%-36s  %-30s  %-20s  %-8s  %s\n", "ID", "Email", "Name", "Role", "Created")
	fmt.Println(strings.Repeat("-", 110))

	for rows.Next() {
		var id, email, name, role, createdAt string
		if err := rows.Scan(&id, &email, &name, &role, &createdAt); err != nil {
			return err
		}
		fmt.Printf("%-36s  %-30s  %-20s  %-8s  %s\n", id, email, name, role, createdAt)
	}

	return rows.Err()
}

func runUserResetPassword(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	users := repository.NewUserRepository(database.DB)
	u, _, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %s not found", email)
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	hash, err := server.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := users.UpdatePassword(u.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password for %s updated successfully\n", u.Email)
	return nil
}
