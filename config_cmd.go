package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# synthesis engine: piper or gtts
engine: piper
# help page style name or JSON path (default "auto")
style: "auto"

voices:
  # directories searched for piper models (*.onnx with *.onnx.json)
  dirs:
    - "~/.local/share/piper-voices"

piper:
  binary: "piper"
  timeout: "30s"

gtts:
  # one voice per language
  languages: ["en", "fr", "de", "es"]
  requests_per_minute: 50

# used for gtts decoding and pitch shifting
ffmpeg: "ffmpeg"

# initial slider positions
controls:
  volume: 1.0
  rate: 1.0
  pitch: 1.0

# voice input needs DEEPGRAM_API_KEY in the environment
recognition:
  language: "en-US"
  model: "nova-3"
  sample_rate: 16000

cache:
  # defaults to the user cache directory
  dir: ""
  # disk size in MB
  max_size: 100
  # zstd level, 0 disables compression
  compression_level: 3

shortcuts:
  # don't run shortcut keys while typing in the text box
  guard_text_input: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the talkbox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the talkbox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("talkbox config\ntalkbox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Talkbox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
