package synth

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Dependency is an external program a backend runs.
type Dependency struct {
	Name     string
	Binary   string
	Required bool
	Purpose  string
}

// DependencyStatus is the result of looking a Dependency up.
type DependencyStatus struct {
	Dependency
	Path string // empty when not found
}

// Found reports whether the program is on the PATH.
func (s DependencyStatus) Found() bool {
	return s.Path != ""
}

// Instructions tells the user how to install the program.
func (s DependencyStatus) Instructions() string {
	switch s.Name {
	case "piper":
		if runtime.GOOS == "darwin" {
			return "brew install piper-tts, or download from https://github.com/rhasspy/piper/releases"
		}
		return "download from https://github.com/rhasspy/piper/releases and add it to PATH"
	case "gtts-cli":
		return "pip install gTTS"
	case "ffmpeg":
		if runtime.GOOS == "darwin" {
			return "brew install ffmpeg"
		}
		return "install ffmpeg with your package manager"
	default:
		return ""
	}
}

// Dependencies lists the programs the named engine needs.
func Dependencies(engine, piperBinary, ffmpeg string) []Dependency {
	if piperBinary == "" {
		piperBinary = "piper"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	switch engine {
	case "gtts":
		return []Dependency{
			{Name: "gtts-cli", Binary: "gtts-cli", Required: true, Purpose: "speech synthesis"},
			{Name: "ffmpeg", Binary: ffmpeg, Required: true, Purpose: "MP3 decoding and pitch"},
		}
	default:
		return []Dependency{
			{Name: "piper", Binary: piperBinary, Required: true, Purpose: "speech synthesis"},
			{Name: "ffmpeg", Binary: ffmpeg, Required: false, Purpose: "pitch and low quality voices"},
		}
	}
}

var lookPath = exec.LookPath

// CheckDependencies looks every dependency up and fails when a required one
// is missing.
func CheckDependencies(deps []Dependency) ([]DependencyStatus, error) {
	statuses := make([]DependencyStatus, 0, len(deps))
	var missing []string
	for _, d := range deps {
		s := DependencyStatus{Dependency: d}
		if path, err := lookPath(d.Binary); err == nil {
			s.Path = path
		} else if d.Required {
			missing = append(missing, d.Name)
		}
		statuses = append(statuses, s)
	}

	if len(missing) > 0 {
		return statuses, fmt.Errorf("missing required programs: %s (run talkbox check)", strings.Join(missing, ", "))
	}
	return statuses, nil
}
