// Command lex-proxy serves cached lex.uz search results over HTTP and
// performs one-shot lookups from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uzgidro/lex-parser/internal/config"
	"github.com/uzgidro/lex-parser/pkg/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is populated by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "lex-proxy",
	Short: "Caching search proxy for the lex.uz legal registry",
	Long: `lex-proxy exposes the lex.uz search form as a JSON API. Result pages are
fetched by replaying the form's postback pagination and cached in memory for
a configurable TTL.

Settings come from lex-proxy.yaml, a .env file and LEX_PROXY_* variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		v := config.New()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		logging.Setup(cfg.LoggingConfig())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lex-proxy.yaml or ~/.config/lex-proxy/lex-proxy.yaml)")
	rootCmd.AddCommand(serveCmd, searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
