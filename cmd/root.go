package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rodydavis/redirectgen/internal/redirect"
)

var rootCmd = &cobra.Command{
	Use:   "redirectgen",
	Short: "Generate web server redirects from a CSV of old and new URLs",
	Long: `Reads a CSV export of old and new URLs and writes Apache or nginx
redirect rules, nested in location blocks that group old URLs by path prefix.

Example:
  redirectgen -i redirects_export.csv -o migration_source_url -n url -r 302 -s nginx`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize Config
		if err := initConfig(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		return nil
	},
	// Generate by default if no subcommand is specified
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("input", "i", "", "input CSV file ('-' for stdin)")
	flags.StringP("old", "o", "", "old URL column: number starting at 1, or header label")
	flags.StringP("new", "n", "", "new URL column: number starting at 1, or header label")
	flags.StringP("delimiter", "d", ",", "field delimiter")
	flags.StringP("quote-char", "q", `"`, "quote character")
	flags.IntP("depth", "p", 3, "number of path segments to nest location blocks by")
	flags.StringP("server", "s", string(redirect.Nginx), "server type: "+redirect.DialectNames())
	flags.StringP("redirect", "r", "302", "return code or status: "+strings.Join(redirect.Statuses, ", "))
	flags.Int("indent", 1, "spaces per nesting level")
	flags.String("header", "auto", "first row is a header: auto, yes, no")
	flags.StringSlice("include", nil, "only redirect old paths matching these globs")
	flags.StringSlice("exclude", nil, "skip old paths matching these globs")
	flags.String("out", "", "write rules to this file instead of stdout")
	flags.BoolP("verbose", "v", false, "log debug details to stderr")

	// Bind viper to these persistent flags
	for key, flag := range map[string]string{
		"input":      "input",
		"old":        "old",
		"new":        "new",
		"delimiter":  "delimiter",
		"quote_char": "quote-char",
		"depth":      "depth",
		"server":     "server",
		"redirect":   "redirect",
		"indent":     "indent",
		"header":     "header",
		"include":    "include",
		"exclude":    "exclude",
		"output":     "out",
		"verbose":    "verbose",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	viper.SetEnvPrefix("REDIRECTGEN")
	viper.AutomaticEnv()
}

func initConfig() error {
	// redirects.yaml in the working directory, if present.
	viper.SetConfigName("redirects")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}
