package main

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the streams and diagnostics logger shared by subcommands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	log    zerolog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "jsonlog",
		Short:         "Format log events as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			noColor, _ := cmd.Flags().GetBool("no-color")
			a.log = newDiagLogger(errOut, level, noColor)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().String("log-level", envOr("JSONLOG_LOG_LEVEL", "info"), "Diagnostics level: debug|info|warn|error")
	root.PersistentFlags().Bool("no-color", os.Getenv("NO_COLOR") != "", "Disable colored diagnostics")
	root.PersistentFlags().String("config", "", "Configuration file (YAML, JSON or TOML)")
	root.PersistentFlags().String("env-file", "", "Optional .env file loaded before the configuration")
	_ = root.MarkPersistentFlagRequired("config")

	root.AddCommand(newFormatCmd(a))
	root.AddCommand(newValidateCmd(a))
	return root
}

// newDiagLogger returns a console logger for the command's own
// diagnostics.
func newDiagLogger(w io.Writer, level string, noColor bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}).Level(lvl).With().Timestamp().Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
