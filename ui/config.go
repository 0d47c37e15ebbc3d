package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle    string `env:"GLAMOUR_STYLE" envDefault:"auto"`
	GlamourMaxWidth uint   `env:"TALKBOX_HELP_WIDTH" envDefault:"80"`
	AltScreen       bool   `env:"TALKBOX_ALT_SCREEN" envDefault:"true"`

	// Initial text box content and where it came from.
	Text   string
	Source string

	// Initial slider positions.
	Volume float64
	Rate   float64
	Pitch  float64

	// Engine is the synthesis backend name shown in the status bar.
	Engine string

	// Recognition language.
	Language string

	// When set, shortcut keys are not dispatched while the text box has
	// focus.
	GuardTextInput bool
}
