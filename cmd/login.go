package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takallem/takallem/internal/api"
	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/screens/login"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session for later runs",
	Long: `Sign in with email and password. The password is read from the first
line of standard input, so it can be piped in from a password manager.

With --signup a new account is created first. Sign-up also needs
--username, --first-name and --gender (Male or Female).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		signup, _ := cmd.Flags().GetBool("signup")

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

		fmt.Fprint(os.Stderr, "Password: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		password, err := reader.ReadString('\n')
		if err != nil && password == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(password, "\r\n")

		var res *course.AuthResponse
		if signup {
			req := api.Signup{Email: email, Password: password}
			req.Username, _ = cmd.Flags().GetString("username")
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")
			gender, _ := cmd.Flags().GetString("gender")
			req.Gender = course.Gender(gender)
			if res, err = login.Register(cmd.Context(), client, st.CredentialRepo(), req); err != nil {
				return fmt.Errorf("sign up: %w", err)
			}
		} else if res, err = login.Authenticate(cmd.Context(), client, st.CredentialRepo(), email, password); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}

		fmt.Printf("Signed in as %s (%s).\n", res.User.DisplayName(), res.User.Email)
		if res.User.HasCurrentCourse() {
			fmt.Printf("Current course: %s\n", *res.User.CurrentCourse)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (required)")
	loginCmd.Flags().Bool("signup", false, "Create the account before signing in")
	loginCmd.Flags().String("username", "", "Username for --signup")
	loginCmd.Flags().String("first-name", "", "First name for --signup")
	loginCmd.Flags().String("last-name", "", "Last name for --signup (optional)")
	loginCmd.Flags().String("gender", "", "Male or Female, for --signup")
	_ = loginCmd.MarkFlagRequired("email")
}
