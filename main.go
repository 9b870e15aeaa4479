package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hexview/internal/buffer"
	"hexview/internal/config"
	"hexview/internal/glyph"
	"hexview/internal/layout"
	"hexview/internal/prefs"
	"hexview/internal/store"
	"hexview/internal/viewer"
)

type options struct {
	dump       bool
	fromDump   bool
	base       int
	columns    int
	strict     bool
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "hexview [flags] <file>",
		Short:         "Terminal hex viewer",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.PersistentFlags()
	f.BoolVar(&opts.dump, "dump", false, "write a hex dump to stdout instead of starting the viewer")
	f.BoolVar(&opts.fromDump, "from-dump", false, "read the file as a hex dump produced by --dump")
	f.IntVar(&opts.base, "base", 0, "address base: 8, 10 or 16")
	f.IntVar(&opts.columns, "columns", 0, "fixed bytes per row (0 fits the terminal)")
	f.BoolVar(&opts.strict, "strict", false, "report rejected viewer actions")
	f.StringVar(&opts.configPath, "config", config.ConfigPath(), "config file")

	return cmd
}

func run(out io.Writer, path string, opts options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return err
	}
	if opts.base != 0 {
		cfg.Viewer.AddressBase = opts.base
	}
	if opts.columns != 0 {
		cfg.Viewer.Columns = opts.columns
	}
	if opts.strict {
		cfg.Viewer.Strict = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog := setupLogging(cfg.Viewer.LogPath)
	defer closeLog()

	format := buffer.FormatRaw
	if opts.fromDump {
		format = buffer.FormatDump
	}

	if opts.dump || !isTerminal(out) {
		return writeDump(out, path, format, cfg.Viewer.Columns)
	}

	db := openPrefs(cfg.Viewer.PrefsPath)
	defer db.Close()

	st := store.New(
		store.WithStrict(cfg.Viewer.Strict),
		store.WithLogger(log.Logger),
		store.WithPrefs(db),
		store.WithHistoryLimit(cfg.Viewer.HistoryLimit),
		store.WithColumnSteps(layout.Steps(cfg.Viewer.ColumnSteps)),
		store.WithAddressBase(glyph.Base(cfg.Viewer.AddressBase)),
		store.WithLayout(cfg.Viewer.Layout()),
	)
	if opts.base != 0 {
		// An explicit flag wins over the stored preference.
		st.Dispatch(store.AddressBaseChanged{Base: glyph.Base(opts.base)})
	}

	model := viewer.NewModel(path, format, cfg, st)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// setupLogging points the global logger at path. Logging is discarded when
// the file cannot be opened since stderr belongs to the terminal UI.
func setupLogging(path string) func() {
	log.Logger = zerolog.New(io.Discard)
	if path == "" {
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return func() {}
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }
}

func openPrefs(path string) *prefs.DB {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("prefs directory unavailable")
		return nil
	}
	db, err := prefs.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("prefs disabled")
		return nil
	}
	return db
}

func writeDump(w io.Writer, path string, format buffer.Format, width int) error {
	buf, err := buffer.Open(path, format)
	if err != nil {
		return err
	}
	return glyph.Dump(w, buf.Glyphs(), width)
}
