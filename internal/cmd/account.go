package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mentorkit/mentor/internal/session"
	"github.com/mentorkit/mentor/internal/style"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	GroupID: GroupAccount,
	Short:   "Manage your mentor account",
	Long: `Manage the local mentor account and sign-in state.

Accounts live in the configured storage backend (file by default) and
exist so the chat can greet you by name. This is a development identity
store only: passwords are kept in plaintext.

Examples:
  mentor account register ana@example.com --name "Ana Lopes"
  mentor account login ana@example.com
  mentor account whoami
  mentor account logout`,
	RunE: requireSubcommand,
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the active account",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var registerName string // --name: display name (default: email local part)

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (default: the part of the email before @)")

	accountCmd.AddCommand(registerCmd)
	accountCmd.AddCommand(loginCmd)
	accountCmd.AddCommand(logoutCmd)
	accountCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := args[0]
	name := registerName
	if name == "" {
		name = localPart(email)
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	store, closeStore, err := openAccountStore()
	if err != nil {
		return err
	}
	defer closeStore()

	profile, err := store.Register(context.Background(), name, email, password)
	if err != nil {
		if errors.Is(err, session.ErrIdentityExists) {
			normalized := session.NormalizeEmail(email)
			return fmt.Errorf("%s is already registered; try 'mentor account login %s'", normalized, normalized)
		}
		return err
	}

	fmt.Printf("%s Registered and signed in as %s <%s>\n", style.SuccessPrefix, profile.Name, profile.Email)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := args[0]

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	store, closeStore, err := openAccountStore()
	if err != nil {
		return err
	}
	defer closeStore()

	profile, err := store.Login(context.Background(), email, password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return fmt.Errorf("no account matches that email and password")
		}
		return err
	}

	fmt.Printf("%s Signed in as %s <%s>\n", style.SuccessPrefix, profile.Name, profile.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openAccountStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Logout(context.Background()); err != nil {
		return err
	}

	fmt.Printf("%s Signed out\n", style.SuccessPrefix)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openAccountStore()
	if err != nil {
		return err
	}
	defer closeStore()

	profile, err := store.Current(context.Background())
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Println("Not signed in.")
		fmt.Println(style.Dim.Render("Run 'mentor account login <email>' to sign in."))
		return nil
	}

	fmt.Printf("%s <%s>\n", profile.Name, profile.Email)
	if !profile.CreatedAt.IsZero() {
		fmt.Println(style.Dim.Render("Registered " + profile.CreatedAt.Format("Jan 2, 2006")))
	}
	return nil
}

// openAccountStore builds the session store from the loaded config.
func openAccountStore() (*session.Store, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return newAccountStore(cfg)
}

// localPart returns the part of an email address before the @, for use
// as a default display name.
func localPart(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// stdin is shared across prompts so piped input survives between reads.
var stdin = bufio.NewReader(os.Stdin)

// promptPassword reads a password without echo when stdin is a
// terminal, and falls back to a plain line read otherwise so the
// command stays scriptable.
func promptPassword(label string) (string, error) {
	fmt.Print(label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
