package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/config"
	"github.com/sahilbajaj/khata/internal/logging"
	"github.com/sahilbajaj/khata/internal/session"
	"github.com/sahilbajaj/khata/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newStore(cfg config.Config) *session.Store {
	log := logging.New(cfg.LogPath())
	files := session.NewFileStore(cfg.ResolveStateDir())
	return session.New(cfg.APIURL, cfg.Token, files, log)
}

func run() error {
	cfg := config.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("khata " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin(cfg)
		case "register":
			return runRegister(cfg)
		case "logout":
			return runLogout(cfg)
		case "whoami":
			return runWhoami(cfg)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}

	// No subcommand: launch the TUI. The session gate inside the app
	// shows the sign-in screen when no valid token is around.
	return launchTUI(newStore(cfg))
}

func runLogin(cfg config.Config) error {
	email, err := readLine("Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	store := newStore(cfg)
	if err := store.Login(context.Background(), email, password); err != nil {
		return err
	}
	user := store.User()
	fmt.Printf("Signed in as %s <%s>\n\n", user.Name, user.Email)
	return launchTUI(store)
}

func launchTUI(store *session.Store) error {
	p := tea.NewProgram(tui.NewApp(store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runRegister(cfg config.Config) error {
	name, err := readLine("Name: ")
	if err != nil {
		return err
	}
	email, err := readLine("Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	store := newStore(cfg)
	if err := store.Register(context.Background(), name, email, password); err != nil {
		return err
	}
	user := store.User()
	fmt.Printf("Welcome, %s. Your khata is ready.\n\n", user.Name)
	return launchTUI(store)
}

func runLogout(cfg config.Config) error {
	files := session.NewFileStore(cfg.ResolveStateDir())
	if files.Token() == "" && cfg.Token == "" {
		fmt.Println("Already logged out.")
		return nil
	}
	store := newStore(cfg)
	store.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cfg config.Config) error {
	store := newStore(cfg)
	if err := store.Initialize(context.Background()); err != nil {
		return err
	}
	user := store.User()
	if user == nil {
		fmt.Println("Not signed in. Run `khata login` or just `khata`.")
		return nil
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

func printHelp() {
	lines := []string{
		"khata — personal ledger for money you gave and took",
		"",
		"Usage:",
		"  khata              open the interactive ledger",
		"  khata login        sign in from the terminal",
		"  khata register     create an account",
		"  khata logout       clear the local session",
		"  khata whoami       show the signed-in user",
		"  khata version      print the version",
		"",
		"Environment:",
		"  KHATA_API_URL      API base URL (default http://localhost:5000/api)",
		"  KHATA_STATE_DIR    token/theme/log directory (default ~/.khata)",
		"  KHATA_TOKEN        bearer token override, never written to disk",
	}
	fmt.Println(strings.Join(lines, "\n"))
}
