package session

import (
	"fmt"

	"github.com/crucial707/blog-platform/cmd/cli/config"
	"github.com/crucial707/blog-platform/cmd/cli/root"
	"github.com/crucial707/blog-platform/internal/client"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the blog API",
		Long:  "Authenticate with the blog API and store a JWT token for subsequent CLI commands.",
		RunE:  runLogin,
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out the current user",
		Long:  "Remove the locally stored JWT token.",
		RunE:  runLogout,
	}

	root.GetRoot().AddCommand(loginCmd, logoutCmd)
}

// ==========================
// Login
// ==========================
func runLogin(cmd *cobra.Command, args []string) error {
	var username, password string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	fmt.Print("Password: ")
	fmt.Scanln(&password)

	c := client.New(config.APIURL(), client.NewSession())
	if err := c.Login(cmd.Context(), username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := config.SaveToken(c.Session.Token()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Println("Login successful. Token stored locally.")
	return nil
}

// ==========================
// Logout
// ==========================
func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.RemoveToken(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// Restore builds a client from the stored token. Commands that need auth
// call this and tell the user to login when no token is stored.
func Restore() (*client.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("please login first")
	}
	return client.New(config.APIURL(), client.NewSessionWithToken(token)), nil
}
