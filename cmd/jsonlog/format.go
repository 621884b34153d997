package main

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipp01105/jsonlog/config"
	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/handler"
)

// maxLineSize bounds a single input event.
const maxLineSize = 4 << 20

func newFormatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format NDJSON events read from stdin",
		Long: "Reads one JSON event per line from stdin and writes one formatted line per event.\n" +
			"Recognized event keys: time, level, logger, message, args, error, stack, caller, extra.\n" +
			"Other keys become extras. Events that fail are reported and skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("formatter")
			loader, err := loadConfig(cmd)
			if err != nil {
				a.log.Error().Err(err).Msg("cannot load configuration")
				return err
			}
			f, err := loader.Formatter(name)
			if err != nil {
				a.log.Error().Err(err).Str("formatter", name).Msg("cannot build formatter")
				return err
			}

			h := handler.NewConsoleHandler(handler.ConsoleConfig{Writer: a.out, Formatter: f})
			defer h.Close()

			scanner := bufio.NewScanner(a.in)
			scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
			lineNo, invalid := 0, 0
			for scanner.Scan() {
				lineNo++
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}
				e, err := decodeEvent(line, time.Now)
				if err != nil {
					invalid++
					a.log.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed event")
					continue
				}
				if err := h.Handle(e); err != nil {
					a.log.Warn().Err(err).Int("line", lineNo).Msg("skipping event")
				}
				core.PutEvent(e)
			}
			if err := scanner.Err(); err != nil {
				a.log.Error().Err(err).Int("line", lineNo).Msg("cannot read input")
				return err
			}

			stats := h.Stats()
			a.log.Debug().
				Uint64("processed", stats.ProcessedTotal).
				Uint64("failed", stats.FailedTotal).
				Int("invalid", invalid).
				Msg("done")
			if skipped := int(stats.FailedTotal) + invalid; skipped > 0 {
				return fmt.Errorf("%d of %d events skipped", skipped, int(stats.ProcessedTotal)+skipped)
			}
			return nil
		},
	}
	cmd.Flags().String("formatter", "", "Name of the formatter section to use")
	_ = cmd.MarkFlagRequired("formatter")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Loader, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	var opts []config.Option
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	return config.Load(path, opts...)
}
