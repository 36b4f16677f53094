package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "takallem",
	Short: "Arabic speaking and writing practice in the terminal",
	Long:  "Takallem: work through Arabic courses module by module, from letters to conversation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TAKALLEM_DB env var)")
	rootCmd.PersistentFlags().String("server", "", "Takallem service URL (overrides TAKALLEM_SERVER_URL env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment variables from this file instead of ./.env")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env, then the environment, then flags, each overriding
// the one before.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		files = append(files, p)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return config.Config{}, err
	}

	cfg := config.ConfigFromEnv()
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.ServerURL = s
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using the --db flag or
// TAKALLEM_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newClient builds an anonymous client that records its requests in s.
func newClient(cfg config.Config, s *store.Store) (*api.Client, error) {
	return api.New(cfg.ServerURL,
		api.WithTimeout(cfg.Timeout),
		api.WithEventRepo(s.EventRepo()),
	)
}

// signedInClient returns a client using the stored token, or an error when
// nobody is signed in to this server.
func signedInClient(cmd *cobra.Command, cfg config.Config, s *store.Store) (*api.Client, *store.Credentials, error) {
	creds, err := s.CredentialRepo().Load(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("load credentials: %w", err)
	}
	if creds == nil {
		return nil, nil, fmt.Errorf("not signed in; run `takallem login` first")
	}
	c, err := newClient(cfg, s)
	if err != nil {
		return nil, nil, err
	}
	return c.WithToken(creds.Token), creds, nil
}
