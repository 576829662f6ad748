// Package cmd implements the wikibot command line interface. Subcommands
// map 1:1 to the core list and mutation operations.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/store"
	"github.com/olgasafonova/wikibot/wiki"
)

var (
	flagURL      string
	flagName     string
	flagPassword string
	verbose      bool
	remember     bool

	logger *slog.Logger
	client *wiki.Client
)

var rootCmd = &cobra.Command{
	Use:   "wikibot",
	Short: "Batch tooling for MediaWiki wikis",
	Long: `wikibot talks to a MediaWiki action API: it authenticates with bot
credentials, follows continuation cursors to materialize complete lists,
and runs batch mutations (delete, move, edit, upload, purge) with a
courtesy delay between items.

Credentials come from flags, falling back to environment variables
(WIKIBOT_URL, WIKIBOT_USERNAME, WIKIBOT_PASSWORD) and then to the local
encrypted store (~/.config/wikibot/store.json, unlocked with
WIKIBOT_PASSPHRASE).

Quick start:
  wikibot list allpages                     # every page, all namespaces paged
  wikibot list backlinks bltitle=Main_Page  # what links here
  wikibot delete "Old page" --reason=cleanup
  wikibot move "A" "B" --prepend="Archive/"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Execute runs the CLI, translating core errors into a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "wiki API endpoint (default $WIKIBOT_URL)")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "", "bot username (default $WIKIBOT_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "bot password (default $WIKIBOT_PASSWORD)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&remember, "remember", false, "save url/credentials to the local encrypted store")
}

// storePath is where credentials are remembered between runs.
func storePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wikibot-store.json"
	}
	return filepath.Join(home, ".config", "wikibot", "store.json")
}

// setup wires logging, environment, stored credentials, and the client.
// Flag > environment > store, in that order.
func setup() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// A .env in the working directory is a convenience, not a requirement.
	_ = godotenv.Load()

	url := firstNonEmpty(flagURL, os.Getenv("WIKIBOT_URL"))
	name := firstNonEmpty(flagName, os.Getenv("WIKIBOT_USERNAME"))
	password := firstNonEmpty(flagPassword, os.Getenv("WIKIBOT_PASSWORD"))

	if url == "" || name == "" || password == "" {
		if s, err := store.Open(storePath(), os.Getenv("WIKIBOT_PASSPHRASE")); err == nil {
			if creds, ok := store.LoadCredentials(s); ok {
				url = firstNonEmpty(url, creds.URL)
				name = firstNonEmpty(name, creds.Username)
				password = firstNonEmpty(password, creds.Password)
				logger.Debug("loaded credentials from store", "path", storePath())
			}
		} else {
			logger.Warn("could not open credential store", "error", err)
		}
	}

	if url == "" {
		return fmt.Errorf("no wiki endpoint: pass --url or set WIKIBOT_URL")
	}

	os.Setenv("WIKIBOT_URL", url)
	cfg, err := wiki.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Username = name
	cfg.Password = password

	client = wiki.NewClient(cfg, logger)
	return nil
}

// persistCredentials honors --remember at the end of a successful run.
func persistCredentials() {
	if !remember {
		return
	}
	passphrase := os.Getenv("WIKIBOT_PASSPHRASE")
	if passphrase == "" {
		logger.Warn("--remember needs WIKIBOT_PASSPHRASE; credentials not saved")
		return
	}
	s, err := store.Open(storePath(), passphrase)
	if err != nil {
		logger.Warn("could not open credential store", "error", err)
		return
	}
	err = store.SaveCredentials(s, store.Credentials{
		URL:      firstNonEmpty(flagURL, os.Getenv("WIKIBOT_URL")),
		Username: firstNonEmpty(flagName, os.Getenv("WIKIBOT_USERNAME")),
		Password: firstNonEmpty(flagPassword, os.Getenv("WIKIBOT_PASSWORD")),
	})
	if err != nil {
		logger.Warn("could not save credentials", "error", err)
		return
	}
	logger.Info("credentials saved", "path", storePath())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// reportBatch prints a per-item report and returns an error when any item
// failed, so the process exits non-zero.
func reportBatch(action string, result wiki.BatchResult) error {
	for _, o := range result {
		if o.Err != nil {
			fmt.Printf("FAIL  %s: %v\n", o.Title, o.Err)
		} else {
			fmt.Printf("ok    %s\n", o.Title)
		}
	}
	if failed := result.Failed(); failed > 0 {
		return fmt.Errorf("%s: %d of %d items failed", action, failed, len(result))
	}
	return nil
}
