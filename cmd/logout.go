package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.CredentialRepo().Delete(cmd.Context()); err != nil {
			return fmt.Errorf("delete credentials: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}
