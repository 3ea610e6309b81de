package config

// Mode is the build mode selected by NODE_ENV.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode treats exactly "development" as development and anything else,
// including an empty value, as production.
func ParseMode(value string) Mode {
	if value == string(ModeDevelopment) {
		return ModeDevelopment
	}
	return ModeProduction
}

func (m Mode) IsDevelopment() bool {
	return m == ModeDevelopment
}

// Options holds every mode dependent switch. It is computed once and the rest
// of the build branches on it instead of comparing the mode again.
type Options struct {
	Mode        Mode   `json:"mode" yaml:"mode"`
	Minify      bool   `json:"minify" yaml:"minify"`
	HashOutputs bool   `json:"hashOutputs" yaml:"hashOutputs"`
	DevServer   bool   `json:"devServer" yaml:"devServer"`
	SourceMaps  bool   `json:"sourceMaps" yaml:"sourceMaps"`
	DropConsole bool   `json:"dropConsole" yaml:"dropConsole"`
	PublicPath  string `json:"publicPath" yaml:"publicPath"`
}

// NewOptions derives the build options for a mode.
func NewOptions(mode Mode) Options {
	if mode.IsDevelopment() {
		return Options{
			Mode:       mode,
			DevServer:  true,
			SourceMaps: true,
			PublicPath: "/",
		}
	}

	return Options{
		Mode:        mode,
		Minify:      true,
		HashOutputs: true,
		DropConsole: true,
	}
}
