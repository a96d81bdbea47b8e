package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dreamdigital/landing/internal/middleware"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin credentials for the dashboards API",
}

var adminHashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an admin password for admin.password_hash",
	Long: `Read a password and print its bcrypt hash.

On a terminal the password is prompted without echo; otherwise the first
line of stdin is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Admin password: ")
		if err != nil {
			return err
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}
		hash, err := middleware.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var adminTokenTTL time.Duration

var adminTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin bearer token from the configured secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Admin.JWTSecret == "" {
			return fmt.Errorf("admin.jwt_secret is not configured; run: landing config init")
		}
		ttl := adminTokenTTL
		if ttl <= 0 {
			ttl = cfg.Admin.TokenTTL
		}
		token, expires, err := middleware.IssueAdminToken([]byte(cfg.Admin.JWTSecret), ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		_, _ = fmt.Fprintf(os.Stderr, "expires %s\n", expires.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	adminTokenCmd.Flags().DurationVar(&adminTokenTTL, "ttl", 0, "token lifetime (default admin.token_ttl)")

	adminCmd.AddCommand(adminHashPasswordCmd)
	adminCmd.AddCommand(adminTokenCmd)
}

// readPassword prompts without echo on a terminal, else reads one stdin line
func readPassword(prompt string) (string, error) {
	if stdinIsTerminal() {
		_, _ = fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(confirmInput).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
