// Package main provides the entry point for the talkbox CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/talkbox/internal/plaintext"
	"github.com/dgnsrekt/talkbox/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	cfg        settings

	rootCmd = &cobra.Command{
		Use:   "talkbox [SOURCE]",
		Short: "Read text aloud and dictate into it, from the terminal",
		Long: paragraph(
			fmt.Sprintf("\nA %s for speech: type or dictate text, then have it read aloud. SOURCE may be a file, a URL or - for stdin.", keyword("text box")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	cfg = s
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("talkbox needs an interactive terminal")
	}

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes {
			arg = "-"
		}
	}

	var text, name string
	if arg != "" {
		src, err := plaintext.Open(cmd.Context(), arg)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck
		if text, err = src.Text(); err != nil {
			return err
		}
		name = displayName(src.Name)
	}

	return runTUI(cmd.Context(), text, name)
}

// displayName shortens a source path for the status bar.
func displayName(name string) string {
	if name == "" {
		return "stdin"
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, name); err == nil && !filepath.IsAbs(rel) && len(rel) < len(name) {
			return rel
		}
	}
	return name
}

func runTUI(ctx context.Context, text, source string) error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if that is invalid
	if err := validateStyle(uiCfg.GlamourStyle); err != nil {
		uiCfg.GlamourStyle = cfg.Style
	}

	uiCfg.Text = text
	uiCfg.Source = source
	uiCfg.Volume = cfg.Volume
	uiCfg.Rate = cfg.Rate
	uiCfg.Pitch = cfg.Pitch
	uiCfg.Engine = cfg.Engine
	uiCfg.Language = cfg.Language
	uiCfg.GuardTextInput = cfg.GuardTextInput

	eng, err := buildEngines(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(uiCfg, eng.ui()).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringP("engine", "e", "piper", "synthesis engine (piper or gtts)")
	rootCmd.PersistentFlags().StringSlice("voice-dir", nil, "directory with piper voice models (repeatable)")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug logs")
	rootCmd.Flags().StringP("language", "l", "", "speech recognition language")
	rootCmd.Flags().StringP("style", "s", styles.AutoStyle, "help page style name or JSON path")
	rootCmd.Flags().Bool("guard", false, "don't run shortcut keys while typing in the text box")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("voices.dirs", rootCmd.PersistentFlags().Lookup("voice-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("recognition.language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("shortcuts.guard_text_input", rootCmd.Flags().Lookup("guard"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, cacheCmd, checkCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "talkbox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "talkbox")}, dirs...)
	}

	if c := os.Getenv("TALKBOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("talkbox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("talkbox")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "talkbox.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
