package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/takallem/takallem/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newClient(cfg, st)
	if err != nil {
		return err
	}

	opts := app.Options{
		Config:         cfg,
		Client:         client,
		CredentialRepo: st.CredentialRepo(),
		SnapshotRepo:   st.SnapshotRepo(),
		EventRepo:      st.EventRepo(),
	}

	saved, err := st.CredentialRepo().Load(cmd.Context())
	switch {
	case err != nil:
		fmt.Fprintln(os.Stderr, "warning: could not read saved sign-in:", err)
	case saved != nil && saved.ServerURL != client.BaseURL():
		fmt.Fprintf(os.Stderr, "Saved sign-in is for %s; sign in again for %s.\n", saved.ServerURL, client.BaseURL())
	default:
		opts.Saved = saved
	}

	return app.Run(opts)
}
