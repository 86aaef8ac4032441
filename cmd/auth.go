package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/session"
	"github.com/swadbest/shopctl/internal/shop"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the store",
	Long: `Sign in with email and password. The session is saved to session.file
and reused by later commands until you log out or the token expires.

Examples:
  shopctl login --email you@example.com              # Prompt for the password
  echo "$PASS" | shopctl login --email you@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)
		if !app.session.IsAuthenticated() {
			printer.Info("Not logged in")
			return nil
		}
		if err := app.shop.Auth.Logout(); err != nil {
			return err
		}
		printer.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in customer",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover a forgotten password",
	Long: `Reset a password in three steps: request a one-time code, verify it,
then choose a new password.

Examples:
  shopctl password forgot --email you@example.com
  shopctl password verify-otp --email you@example.com --otp 123456
  shopctl password reset --email you@example.com --otp 123456`,
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Email a one-time code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		msg, err := app.shop.Auth.ForgotPassword(cmd.Context(), email)
		if err != nil {
			return err
		}
		newPrinter(cmd).Success("%s", orDefault(msg, "A code has been sent to "+email))
		return nil
	},
}

var passwordVerifyCmd = &cobra.Command{
	Use:   "verify-otp",
	Short: "Check a one-time code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		otp, _ := cmd.Flags().GetString("otp")
		msg, err := app.shop.Auth.VerifyOTP(cmd.Context(), email, otp)
		if err != nil {
			return err
		}
		newPrinter(cmd).Success("%s", orDefault(msg, "Code verified"))
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		otp, _ := cmd.Flags().GetString("otp")
		password, err := passwordFlagOrPrompt(cmd, "New password")
		if err != nil {
			return err
		}
		msg, err := app.shop.Auth.ResetPassword(cmd.Context(), email, otp, password)
		if err != nil {
			return err
		}
		newPrinter(cmd).Success("%s", orDefault(msg, "Password updated, you can log in now"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwordCmd)
	passwordCmd.AddCommand(passwordForgotCmd, passwordVerifyCmd, passwordResetCmd)

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().String("name", "", "full name")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("phone", "", "phone number")
	registerCmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	whoamiCmd.Flags().Bool("token", false, "show access token claims")

	for _, c := range []*cobra.Command{passwordForgotCmd, passwordVerifyCmd, passwordResetCmd} {
		c.Flags().String("email", "", "account email")
		_ = c.MarkFlagRequired("email")
	}
	for _, c := range []*cobra.Command{passwordVerifyCmd, passwordResetCmd} {
		c.Flags().String("otp", "", "one-time code from the email")
		_ = c.MarkFlagRequired("otp")
	}
	passwordResetCmd.Flags().String("password", "", "new password (read from stdin when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	email, _ := cmd.Flags().GetString("email")
	password, err := passwordFlagOrPrompt(cmd, "Password")
	if err != nil {
		return err
	}

	user, err := app.shop.Auth.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	logger.Debug("signed in", "user_id", user.ID)
	printer.Success("Logged in as %s", displayName(user))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	req := shop.RegisterRequest{}
	req.Name, _ = cmd.Flags().GetString("name")
	req.Email, _ = cmd.Flags().GetString("email")
	req.Phone, _ = cmd.Flags().GetString("phone")

	password, err := passwordFlagOrPrompt(cmd, "Password")
	if err != nil {
		return err
	}
	req.Password = password

	user, err := app.shop.Auth.Register(cmd.Context(), req)
	if err != nil {
		return err
	}
	if user == nil {
		printer.Success("Account created for %s", req.Email)
		printer.Info("Run 'shopctl login --email %s' to sign in", req.Email)
		return nil
	}

	printer.Success("Account created, logged in as %s", displayName(user))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	user := app.session.User()
	if user == nil {
		printer.Empty("Not logged in")
		return nil
	}

	printer.Header(displayName(user))
	table := printer.NewTable("FIELD", "VALUE")
	table.AddRow([]string{"id", user.ID})
	table.AddRow([]string{"email", user.Email})
	if user.Phone != "" {
		table.AddRow([]string{"phone", user.Phone})
	}

	if showToken, _ := cmd.Flags().GetBool("token"); showToken {
		if claims, ok := session.ParseClaims(app.session.AccessToken()); ok {
			if claims.Subject != "" {
				table.AddRow([]string{"token.subject", claims.Subject})
			}
			if claims.IssuedAt != nil {
				table.AddRow([]string{"token.issued", claims.IssuedAt.Format(time.RFC3339)})
			}
			if claims.ExpiresAt != nil {
				table.AddRow([]string{"token.expires", claims.ExpiresAt.Format(time.RFC3339)})
			}
		} else {
			table.AddRow([]string{"token", "opaque"})
		}
	}
	return table.Render()
}

func passwordFlagOrPrompt(cmd *cobra.Command, prompt string) (string, error) {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw, nil
	}
	return readSecret(cmd, prompt)
}

func displayName(u *session.User) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
