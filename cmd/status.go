package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/config"
	"github.com/takallem/takallem/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress in every course",
	Long: `Show the last known progress in every course. Progress is read from the
local cache unless --refresh is given, in which case the current course is
fetched from the service first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		creds, err := st.CredentialRepo().Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
		if creds == nil {
			return fmt.Errorf("not signed in; run `takallem login` first")
		}
		fmt.Printf("Signed in as %s at %s\n\n", creds.Email, creds.ServerURL)

		if refresh {
			if err := refreshSnapshot(cmd, cfg, st, creds.UserID); err != nil {
				return err
			}
		}

		snaps, err := st.SnapshotRepo().LatestPerCourse(cmd.Context(), creds.UserID)
		if err != nil {
			return fmt.Errorf("query snapshots: %w", err)
		}
		if len(snaps) == 0 {
			fmt.Println("No progress recorded yet. Run takallem to start a course.")
			return nil
		}

		fmt.Printf("%-32s  %-10s  %-14s  %9s  %7s  %s\n",
			"Course", "Language", "Dialect", "Module", "Counter", "Updated")
		fmt.Println(strings.Repeat("─", 100))
		for _, s := range snaps {
			p := s.Progress
			dialect := string(p.DialectOrDefault())
			if dialect == "" {
				dialect = "-"
			} else if !p.HasDialect() {
				dialect += " (default)"
			}
			fmt.Printf("%-32s  %-10s  %-14s  %4d/%-4d  %7d  %s\n",
				p.CourseName, p.Language, dialect, p.CurrModule, p.TotalModules,
				p.ProblemCounter, s.Timestamp.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// refreshSnapshot fetches the current course's progress and caches it.
func refreshSnapshot(cmd *cobra.Command, cfg config.Config, st *store.Store, userID int) error {
	client, _, err := signedInClient(cmd, cfg, st)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	u, err := client.Me(ctx)
	if err != nil {
		if api.IsAuth(err) {
			return fmt.Errorf("session expired; run `takallem login` again")
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !u.HasCurrentCourse() {
		return nil
	}
	p, err := client.GetProgress(ctx, u.ID, *u.CurrentCourse)
	if errors.Is(err, api.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	return st.SnapshotRepo().Save(ctx, userID, p)
}

func init() {
	statusCmd.Flags().Bool("refresh", false, "Fetch the current course from the service first")
}
