package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rodydavis/redirectgen/internal/redirect"
	"github.com/rodydavis/redirectgen/internal/source"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate redirect rules from the input CSV",
	Long:  `Reads old and new URL columns from the input CSV and writes nested Apache or nginx redirect rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// runGenerate loads the merged flag/file configuration and runs the pipeline.
func runGenerate(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Verbose)

	res, err := cfg.resolve(log)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, cfg.Input)
	if err != nil {
		return err
	}
	defer closeIn()

	var buf bytes.Buffer
	n, err := generate(in, &buf, res)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input, err)
	}

	if cfg.Output == "" {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := os.WriteFile(cfg.Output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output, err)
	}
	log.Info("rules written", "rules", n, "output", cfg.Output)
	return nil
}

// generate reads records from in and renders them into out. It returns the
// number of rules written.
func generate(in io.Reader, out io.Writer, res resolved) (int, error) {
	records, err := source.Read(in, res.source)
	if err != nil {
		return 0, err
	}
	root, err := redirect.Build(records, res.render.Depth)
	if err != nil {
		return 0, err
	}
	if err := redirect.Render(out, root, res.render); err != nil {
		return 0, err
	}
	return root.Leaves(), nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}
