package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/foxzi/wadesk/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the signed-in user's profile",
	RunE:  runProfile,
}

var (
	registerName  string
	profileName   string
	profileAvatar string
)

func init() {
	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "Display name (required)")
	registerCmd.MarkFlagRequired("name")

	profileCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileCmd.Flags().StringVar(&profileAvatar, "avatar", "", "New avatar URL")
}

// readSecret reads a password from the terminal without echo, or a single
// line when stdin is not a terminal
func readSecret(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print(prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := app.Session.Login(ctx, args[0], password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s <%s>\n", res.User.Name, res.User.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}
	if term.IsTerminal(int(syscall.Stdin)) {
		confirm, err := readSecret("Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := app.Session.Register(ctx, registerName, args[0], password)
	if err != nil {
		return err
	}

	fmt.Printf("Account created, signed in as %s <%s>\n", res.User.Name, res.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app.Session.Logout()
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	u, err := app.Session.FetchProfile(ctx)
	if err != nil {
		return err
	}
	printUser(u)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	var patch models.ProfileUpdate
	if cmd.Flags().Changed("name") {
		patch.Name = &profileName
	}
	if cmd.Flags().Changed("avatar") {
		patch.Avatar = &profileAvatar
	}
	if patch.Name == nil && patch.Avatar == nil {
		return fmt.Errorf("nothing to update, use --name or --avatar")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	u, err := app.Session.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Println("Profile updated")
	printUser(u)
	return nil
}

func printUser(u *models.User) {
	fmt.Printf("  ID:    %s\n", u.ID)
	fmt.Printf("  Name:  %s\n", u.Name)
	fmt.Printf("  Email: %s\n", u.Email)
	fmt.Printf("  Role:  %s\n", u.Role)
	if u.Avatar != "" {
		fmt.Printf("  Avatar: %s\n", u.Avatar)
	}
}
