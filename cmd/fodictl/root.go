package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fodi-backend/internal/adminclient"
	"fodi-backend/internal/console"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	keyAPIURL    = "api_url"
	keyTokenFile = "token_file"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FODI")
	v.AutomaticEnv()
	v.SetDefault(keyAPIURL, adminclient.DefaultBaseURL)
	v.SetDefault(keyTokenFile, defaultTokenFile())

	return (&cli{v: v, out: os.Stdout, in: os.Stdin}).rootCmd()
}

func (a *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fodictl",
		Short:         "FODI Market back-office console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api-url", "", "admin API base URL (env FODI_API_URL)")
	root.PersistentFlags().String("token-file", "", "where the session token is kept (env FODI_TOKEN_FILE)")
	_ = a.v.BindPFlag(keyAPIURL, root.PersistentFlags().Lookup("api-url"))
	_ = a.v.BindPFlag(keyTokenFile, root.PersistentFlags().Lookup("token-file"))

	root.AddCommand(
		a.loginCmd(),
		a.whoamiCmd(),
		a.ingredientsCmd(),
		a.semiCmd(),
		a.productsCmd(),
		calcCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return root
}

type cli struct {
	v   *viper.Viper
	out io.Writer
	in  io.Reader
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "fodictl", "token")
}

func (a *cli) tokenFile() string { return a.v.GetString(keyTokenFile) }

func (a *cli) readToken() string {
	b, err := os.ReadFile(a.tokenFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (a *cli) saveToken(token string) error {
	path := a.tokenFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func (a *cli) client() *adminclient.Client {
	return adminclient.New(a.v.GetString(keyAPIURL), a.readToken())
}

// fail turns a page or client error into the command error.
func (a *cli) fail(err error) error {
	msg := console.Describe(err)
	if errors.Is(err, adminclient.ErrSignInRequired) {
		msg += " (выполните fodictl login)"
	}
	zap.L().Debug("command failed", zap.Error(err))
	return errors.New(msg)
}

// confirm asks a yes/no question unless skip is set.
func (a *cli) confirm(skip bool, question string) bool {
	if skip {
		return true
	}
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// table is a borderless listing; callers Append rows and Render.
func (a *cli) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(a.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

func (a *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = a.v.GetString("password")
			}
			s, err := a.client().WithToken("").Login(email, password)
			if err != nil {
				return a.fail(err)
			}
			if err := a.saveToken(s.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(a.out, "Вход выполнен: %s (%s), сессия до %s\n",
				s.User.Email, s.User.Role, s.Expires.Local().Format("02.01.2006 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (env FODI_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.client()
			u, err := c.CurrentSession()
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "%s <%s>, роль %s, сервер %s\n", u.Name, u.Email, u.Role, c.BaseURL())
			return nil
		},
	}
}
