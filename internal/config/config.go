package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	// frame naming: <FrameDir>/frame<N>.<FileExt>, N starts at 1
	FramePrefix = "frame"

	DefaultFrameDir = "frames"
	DefaultFileExt  = "png"
	DefaultColor    = "#2464b4"
	DefaultFormat   = "png"

	// development-only key, see https://www.desmos.com/api/v1.8/docs/index.html#document-api-keys
	DefaultDesmosAPIKey = "dcb31709b452b1cf9dc26972add0fda6"
)

var ScreenshotFormats = []string{"svg", "png"}

// Error is a malformed flag or environment value. It is detected before any
// frame is touched.
type Error struct {
	Option string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Option, e.Value, e.Reason)
}

// Server is read from the environment.
type Server struct {
	Host         string `env:"HOST"           envDefault:"0.0.0.0"`
	Port         int    `env:"PORT"           envDefault:"5000"`
	DesmosAPIKey string `env:"DESMOS_API_KEY" envDefault:"dcb31709b452b1cf9dc26972add0fda6"`
}

// Size is the screenshot size. Zero values mean "use the calculator size".
type Size struct {
	Width  int
	Height int
}

func (s Size) IsSet() bool {
	return s.Width > 0 && s.Height > 0
}

// Config is built once at startup and passed to every component by value.
type Config struct {
	FrameDir string
	FileExt  string
	Color    string

	Bilateral  bool
	L2Gradient bool

	ShowGrid         bool
	DownloadImages   bool
	ScreenshotSize   Size
	ScreenshotFormat string

	OpenBrowser bool
	AcceptEULA  bool

	Workers   int
	CachePath string

	Server Server
}

func Default() Config {
	return Config{
		FrameDir:         DefaultFrameDir,
		FileExt:          DefaultFileExt,
		Color:            DefaultColor,
		ShowGrid:         true,
		ScreenshotFormat: DefaultFormat,
		OpenBrowser:      true,
		Workers:          runtime.NumCPU(),
		Server: Server{
			Host:         "0.0.0.0",
			Port:         5000,
			DesmosAPIKey: DefaultDesmosAPIKey,
		},
	}
}

// LoadServer reads HOST, PORT and DESMOS_API_KEY.
func LoadServer() (Server, error) {
	var s Server
	if err := env.Parse(&s); err != nil {
		return s, &Error{Option: "environment", Value: "", Reason: err.Error()}
	}
	return s, nil
}

// ParseSize parses "<width>x<height>", e.g. 3840x2160.
func ParseSize(s string) (Size, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return Size{}, &Error{Option: "size", Value: s, Reason: "expected <width>x<height>"}
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Size{}, &Error{Option: "size", Value: s, Reason: "width is not a number"}
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Size{}, &Error{Option: "size", Value: s, Reason: "height is not a number"}
	}
	if w <= 0 || h <= 0 {
		return Size{}, &Error{Option: "size", Value: s, Reason: "dimensions must be positive"}
	}
	return Size{Width: w, Height: h}, nil
}

func ParseFormat(s string) (string, error) {
	for _, f := range ScreenshotFormats {
		if s == f {
			return s, nil
		}
	}
	return "", &Error{Option: "format", Value: s, Reason: `use "svg" or "png"`}
}

// Validate checks the combination of options.
func (c Config) Validate() error {
	if c.FrameDir == "" {
		return &Error{Option: "frames directory", Value: c.FrameDir, Reason: "must not be empty"}
	}
	if c.FileExt == "" || strings.ContainsAny(c.FileExt, `/\`) {
		return &Error{Option: "extension", Value: c.FileExt, Reason: "must be a bare file extension"}
	}
	if c.Color == "" {
		return &Error{Option: "colour", Value: c.Color, Reason: "must not be empty"}
	}
	if _, err := ParseFormat(c.ScreenshotFormat); err != nil {
		return err
	}
	if c.Workers < 1 {
		return &Error{Option: "workers", Value: strconv.Itoa(c.Workers), Reason: "must be at least 1"}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &Error{Option: "PORT", Value: strconv.Itoa(c.Server.Port), Reason: "out of range"}
	}
	return nil
}
