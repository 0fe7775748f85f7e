// Package main provides the CLI entrypoint for typetest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typetest/internal/config"
	"github.com/verte-zerg/typetest/internal/generator"
	"github.com/verte-zerg/typetest/internal/menu"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
	"github.com/verte-zerg/typetest/internal/statsui"
	"github.com/verte-zerg/typetest/internal/store"
	"github.com/verte-zerg/typetest/internal/tui"
	"github.com/verte-zerg/typetest/internal/wordlist"
)

const (
	defaultCurveWindow = 10
	plainPlotHeight    = 10
)

var (
	testMode       string
	testWords      int
	testTime       int
	testDifficulty string
	testLang       string
	testLayout     string
	testFocusWeak  bool
	testWeakTop    int
	testWeakFactor float64
	testWeakWindow int
	openMenu       bool
	openStats      bool

	statsKey         string
	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	config.LoadEnv()
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typetest",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTestCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&testMode, "mode", string(config.DefaultMode), "test mode: words or time")
	flags.IntVar(&testWords, "words", config.DefaultWords, "words per test in words mode")
	flags.IntVar(&testTime, "time", config.DefaultTimeLimit, "time limit in seconds in time mode")
	flags.StringVar(&testDifficulty, "difficulty", string(config.DefaultDifficulty), "word difficulty: easy, medium or hard")
	flags.StringVar(&testLang, "lang", config.DefaultLang, "language pack")
	flags.StringVar(&testLayout, "layout", string(config.DefaultLayout), "layout theme: default or boxes")
	flags.BoolVar(&testFocusWeak, "focus-weak", false, "bias words toward weak characters")
	flags.IntVar(&testWeakTop, "weak-top", config.DefaultWeakTop, "number of weak characters to focus on")
	flags.Float64Var(&testWeakFactor, "weak-factor", config.DefaultWeakFactor, "weight factor for weak characters")
	flags.IntVar(&testWeakWindow, "weak-window", config.DefaultWeakWindow, "number of recent results to compute weak chars")
	flags.BoolVarP(&openMenu, "menu", "m", false, "open the settings menu")
	flags.BoolVarP(&openStats, "stats", "s", false, "open the stats viewer")

	rootCmd.AddCommand(newMenuCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	return rootCmd
}

func runTestCmd(cmd *cobra.Command, args []string) error {
	if openMenu {
		return runMenuCmd(cmd, args)
	}
	if openStats {
		statsCurveWindow = defaultCurveWindow
		return runStatsCmd(cmd, args)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyTestFlags(cmd, &settings); err != nil {
		return err
	}
	if err := config.Validate(settings); err != nil {
		return err
	}

	tiers, err := wordlist.Resolve(config.DefaultLanguageDir(), settings.Lang)
	if err != nil {
		return languageLoadError(settings.Lang, err)
	}
	source := generator.NewSource(generator.New(), tiers, settings.Mode == model.ModeTime)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m, err := tui.NewModel(settings, source, st)
	if err != nil {
		return fmt.Errorf("failed to start test: %w", err)
	}
	if err := runProgram(m); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

func applyTestFlags(cmd *cobra.Command, s *model.Settings) error {
	if cmd.Flags().Changed("mode") {
		mode, err := model.ParseMode(testMode)
		if err != nil {
			return err
		}
		s.Mode = mode
	}
	if cmd.Flags().Changed("difficulty") {
		d, err := model.ParseDifficulty(testDifficulty)
		if err != nil {
			return err
		}
		s.Difficulty = d
	}
	if cmd.Flags().Changed("layout") {
		layout, err := model.ParseLayout(testLayout)
		if err != nil {
			return err
		}
		s.Layout = layout
	}
	applyFlag(cmd, "words", &s.Words, testWords)
	applyFlag(cmd, "time", &s.TimeLimit, testTime)
	applyFlag(cmd, "lang", &s.Lang, testLang)
	applyFlag(cmd, "focus-weak", &s.FocusWeak, testFocusWeak)
	applyFlag(cmd, "weak-top", &s.WeakTop, testWeakTop)
	applyFlag(cmd, "weak-factor", &s.WeakFactor, testWeakFactor)
	applyFlag(cmd, "weak-window", &s.WeakWindow, testWeakWindow)
	return nil
}

// applyFlag overrides a config value with an explicitly set flag.
func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func loadSettings() (model.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := fileCfg.Settings()
	if err != nil {
		return model.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Edit settings in an interactive menu",
		Args:  cobra.NoArgs,
		RunE:  runMenuCmd,
	}
}

func runMenuCmd(_ *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	langs, err := wordlist.ListPacks(config.DefaultLanguageDir())
	if err != nil {
		logErrf("failed to list languages: %v\n", err)
		langs = []string{wordlist.BuiltinName}
	}
	path := config.DefaultConfigPath()
	m := menu.NewModel(settings, langs, func(s model.Settings) error {
		return config.SaveConfig(path, config.FromSettings(s))
	})
	if err := runProgram(m); err != nil {
		return fmt.Errorf("failed to run menu: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show results",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsKey, "key", "", "result key, e.g. words_25_easy")
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats as text instead of the viewer")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg := model.StatsConfig{
		Key:         statsKey,
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build stats: %w", err)
		}
		out := cmd.OutOrStdout()
		if err := report.Render(out, stats.TerminalWidth(), plainPlotHeight, stats.ColorEnabled(out)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := runProgram(statsui.NewModel(st, cfg)); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available language packs",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	dir := config.DefaultLanguageDir()
	langs, err := wordlist.ListPacks(dir)
	if err != nil {
		return fmt.Errorf("failed to list language packs: %w", err)
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if len(langs) == 1 {
		logErrf("Add packs as <name>.txt or <name>.json in %s\n", dir)
	}
	return nil
}

// runProgram runs a full-screen program. The standard logger writes to the
// debug log while it runs, or nowhere when debugging is off.
func runProgram(m tea.Model) error {
	restore, err := redirectLog()
	if err != nil {
		return err
	}
	defer restore()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func redirectLog() (func(), error) {
	prev := log.Writer()
	restore := func() { log.SetOutput(prev) }
	if !config.DebugEnabled() {
		log.SetOutput(io.Discard)
		return restore, nil
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "typetest")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort log close.
			_ = cerr
		}
		restore()
	}, nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typetest configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# mode = %q            # words or time
# words = %d              # Words per test in words mode
# time = %d               # Time limit in seconds in time mode
# difficulty = %q      # easy, medium or hard
# lang = %q         # Language pack name
# layout = %q       # default or boxes
# restart-key = %t      # Tab restarts the current test
# focus-weak = false      # Bias words toward weak characters
# weak-top = %d            # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent results to compute weak chars

[theme]
# correct = %q
# incorrect = %q
# pending = %q
`,
		config.DefaultMode,
		config.DefaultWords,
		config.DefaultTimeLimit,
		config.DefaultDifficulty,
		config.DefaultLang,
		config.DefaultLayout,
		config.DefaultRestartKey,
		config.DefaultWeakTop,
		config.DefaultWeakFactor,
		config.DefaultWeakWindow,
		config.DefaultCorrect,
		config.DefaultIncorrect,
		config.DefaultPending,
	)
}

func languageLoadError(lang string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load language %q: %v", lang, err),
		fmt.Sprintf("packs are read from: %s", config.DefaultLanguageDir()),
		"Run: typetest langs",
	}
	return errors.New(strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
