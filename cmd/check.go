package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rodydavis/redirectgen/internal/check"
	"github.com/rodydavis/redirectgen/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch every redirect target and report the ones that fail",
	Long: `Reads the input CSV like generate does, then requests each distinct new URL
path against --base and reports its status and canonical link.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg.Verbose)
		res, err := cfg.resolve(log)
		if err != nil {
			return err
		}
		base, err := cfg.baseURL()
		if err != nil {
			return err
		}
		in, closeIn, err := openInput(cmd, cfg.Input)
		if err != nil {
			return err
		}
		defer closeIn()

		c := &check.Checker{Base: base, Parallelism: cfg.Parallelism, Logger: log}
		return runCheck(in, cmd.OutOrStdout(), res.source, c, log)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("base", "", "scheme and host new paths are resolved against (e.g. https://example.com)")
	checkCmd.Flags().Int("parallelism", 4, "concurrent requests")

	viper.BindPFlag("base", checkCmd.Flags().Lookup("base"))
	viper.BindPFlag("parallelism", checkCmd.Flags().Lookup("parallelism"))
}

func runCheck(in io.Reader, out io.Writer, opts source.Options, c *check.Checker, log *slog.Logger) error {
	records, err := source.Read(in, opts)
	if err != nil {
		return err
	}
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.New
	}
	results, err := c.Run(paths)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
		fmt.Fprintln(out, r)
	}
	log.Info("targets checked", "targets", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(results))
	}
	return nil
}
