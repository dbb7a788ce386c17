package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the generated rules file",
	Long:  `Removes the file written by generate --out. Does nothing when output goes to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No output file configured.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removing %s\n", cfg.Output)
		if err := os.Remove(cfg.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", cfg.Output, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Clean complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
