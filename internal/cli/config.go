package cli

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/mymoto/themekit/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show every configuration key with its effective value and the environment
variable that sets it. Values come from defaults, the config file, .env files,
the environment and flags, in increasing priority.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := appConfig.Values()
			values["store.database_url"] = redactDSN(appConfig.Store.DatabaseURL)

			table := NewTable("KEY", "VALUE", "ENV")
			for _, field := range config.Fields() {
				table.AddRow(field.Key, values[field.Key], field.Env())
			}

			out := cmd.OutOrStdout()
			if appConfig.File != "" {
				fmt.Fprintf(out, "config file: %s\n\n", appConfig.File)
			}
			fmt.Fprint(out, table.Render())
			return nil
		},
	}
}

var dsnPassword = regexp.MustCompile(`(password=)\S+`)

// redactDSN hides the password of a URL or key=value connection string.
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return u.Redacted()
	}
	return dsnPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
