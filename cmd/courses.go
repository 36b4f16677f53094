package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the course catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		client, _, err := signedInClient(cmd, cfg, st)
		if err != nil {
			return err
		}
		langs, err := client.Languages(cmd.Context())
		if err != nil {
			return fmt.Errorf("load catalogue: %w", err)
		}

		// Header.
		fmt.Printf("%-12s  %-36s  %7s  %s\n", "Language", "Course", "Modules", "Default dialect")
		fmt.Println(strings.Repeat("─", 80))

		count := 0
		for _, l := range langs {
			if language != "" && !strings.EqualFold(string(l.Language), language) {
				continue
			}
			for _, c := range l.Courses {
				dialect := "-"
				if c.DefaultDialect != nil {
					dialect = string(*c.DefaultDialect)
				}
				fmt.Printf("%-12s  %-36s  %7d  %s\n", l.Language, c.CourseName, c.TotalModules, dialect)
				count++
			}
		}

		fmt.Printf("\n%d courses\n", count)
		return nil
	},
}

func init() {
	coursesCmd.Flags().String("language", "", "Only list courses for this language")
}
