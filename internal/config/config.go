package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"

	"hexview/internal/glyph"
	"hexview/internal/layout"
)

type Theme struct {
	Background          string `toml:"background"`
	CursorBackground    string `toml:"cursor_background"`
	SelectionBackground string `toml:"selection_background"`
	MatchBackground     string `toml:"match_background"`
	CurrentMatch        string `toml:"current_match_background"`
	AddressColor        string `toml:"address_color"`
	IndexMarker         string `toml:"index_marker_background"`
	LegendBackground    string `toml:"legend_background"`
	LegendHighlight     string `toml:"legend_highlight"`
	BorderColor         string `toml:"border_color"`
	DisabledColor       string `toml:"disabled_color"`
}

type Viewer struct {
	// AddressBase is 8, 10 or 16. A stored preference overrides it.
	AddressBase  int    `toml:"address_base"`
	HistoryLimit int    `toml:"history_limit"`
	ColumnSteps  []int  `toml:"column_steps"`
	Columns      int    `toml:"columns"`
	Fullscreen   bool   `toml:"fullscreen"`
	Strict       bool   `toml:"strict"`
	PrefsPath    string `toml:"prefs_path"`
	LogPath      string `toml:"log_path"`
}

type Config struct {
	Theme  Theme  `toml:"theme"`
	Viewer Viewer `toml:"viewer"`
}

func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Theme: Theme{
			Background:          "#000000",
			CursorBackground:    "#0000FF",
			SelectionBackground: "#FFAA00",
			MatchBackground:     "#444400",
			CurrentMatch:        "#FF00FF",
			AddressColor:        "#888888",
			IndexMarker:         "#000080",
			LegendBackground:    "#0000FF",
			LegendHighlight:     "#FF0000",
			BorderColor:         "#0000FF",
			DisabledColor:       "#666666",
		},
		Viewer: Viewer{
			AddressBase:  int(glyph.BaseHex),
			HistoryLimit: 50,
			ColumnSteps:  append([]int(nil), layout.DefaultSteps...),
			PrefsPath:    filepath.Join(dir, "prefs.db"),
			LogPath:      filepath.Join(dir, "hexview.log"),
		},
	}
}

// Dir returns ~/.config/hexview, or the working directory when there is no home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "hexview")
}

func ConfigPath() string {
	return filepath.Join(Dir(), "hexview.toml")
}

// Load reads the config at ConfigPath.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if !glyph.Base(c.Viewer.AddressBase).Valid() {
		errs = append(errs, fmt.Errorf("viewer.address_base=%d must be 8, 10 or 16", c.Viewer.AddressBase))
	}
	if c.Viewer.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("viewer.history_limit=%d must not be negative", c.Viewer.HistoryLimit))
	}
	if c.Viewer.Columns < 0 {
		errs = append(errs, fmt.Errorf("viewer.columns=%d must not be negative", c.Viewer.Columns))
	}
	if err := layout.Steps(c.Viewer.ColumnSteps).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("viewer.column_steps: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Layout returns the initial layout: auto columns unless a manual count is
// configured, always auto rows.
func (v Viewer) Layout() layout.Config {
	cfg := layout.DefaultConfig()
	if v.Columns > 0 {
		cfg.AutoColumns = false
		cfg.Columns = v.Columns
	}
	if v.Fullscreen {
		cfg.Mode = layout.ModeFullscreen
	}
	return cfg
}

func (c *Config) Save() error {
	return c.SaveFile(ConfigPath())
}

func (c *Config) SaveFile(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

type Styles struct {
	Background      lipgloss.Style
	Cursor          lipgloss.Style
	Selection       lipgloss.Style
	Match           lipgloss.Style
	CurrentMatch    lipgloss.Style
	Address         lipgloss.Style
	IndexMarker     lipgloss.Style
	Legend          lipgloss.Style
	LegendHighlight lipgloss.Style
	Border          lipgloss.Style
	Disabled        lipgloss.Style
	Normal          lipgloss.Style
	DecoderLabel    lipgloss.Style
	DecoderValue    lipgloss.Style
	HelpTitle       lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.Background)),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CursorBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Selection: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.SelectionBackground)).
			Foreground(lipgloss.Color("#000000")),
		Match: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.MatchBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		CurrentMatch: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CurrentMatch)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		Address: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.AddressColor)),
		IndexMarker: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.IndexMarker)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Legend: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		LegendHighlight: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		Border: lipgloss.NewStyle().
			BorderForeground(lipgloss.Color(theme.BorderColor)),
		Disabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.DisabledColor)),
		Normal: lipgloss.NewStyle(),
		DecoderLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		DecoderValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")),
		HelpTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
	}
}
