package rollerr

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	"golift.io/rollerr/filer"
	"gopkg.in/yaml.v3"
)

// These are the default file and directory POSIX modes.
const (
	FileMode os.FileMode = 0o644
	DirMode  os.FileMode = 0o750
)

// DefaultMaxQueueBytes is the Enqueue high-water mark used when the config
// omits one. Enqueue returns false once this many bytes are waiting.
const DefaultMaxQueueBytes = 1 << 20

// Open flag shorthands accepted by Config.Flags.
const (
	FlagsAppend   = "a" // append to an existing file
	FlagsTruncate = "w" // truncate on open
)

// Size is a byte count that unmarshals from plain numbers or from
// human-readable strings such as "10MB" or "512 KiB".
type Size uint64

// UnmarshalYAML accepts either a YAML integer or a size string.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("parsing size %q: %w", value.Value, err)
	}

	*s = Size(v)

	return nil
}

// UnmarshalJSON accepts either a JSON number or a size string.
func (s *Size) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)

	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("parsing size %q: %w", text, err)
	}

	*s = Size(v)

	return nil
}

// String formats the size the way datasize does: "10MB", "1GB", ...
func (s Size) String() string { return datasize.ByteSize(s).String() }

// Config is the data needed to create a new Roller. The tag names are stable:
// configuration files written for other tooling that manages the same log
// layout parse unchanged.
type Config struct {
	// Filename is the full path of the active log file. Required.
	Filename string `json:"filename" yaml:"filename"`
	// MaxBytes is the size threshold that triggers a rotation. Zero means
	// the file grows without bound (plain append mode).
	MaxBytes Size `json:"maxBytes" yaml:"maxBytes"`
	// MaxBackups is the number of numbered backups kept by the size
	// policy. nil means the default of 1. An explicit 0 keeps none: the
	// rotated file is discarded rather than renumbered.
	MaxBackups *int `json:"maxBackups" yaml:"maxBackups"`
	// DatePattern selects date-based rotation when non-empty. Patterns use
	// date-format tokens (".yyyy-MM-dd") or a Go time layout.
	DatePattern string `json:"datePattern" yaml:"datePattern"`
	// AlwaysIncludePattern names the active file with the current date
	// label instead of renaming on rotation.
	AlwaysIncludePattern bool `json:"alwaysIncludePattern" yaml:"alwaysIncludePattern"`
	// KeepFileExt inserts backup ordinals and date labels before the file
	// extension: app.1.log instead of app.log.1.
	KeepFileExt bool `json:"keepFileExt" yaml:"keepFileExt"`
	// Compress gzips each backup once it has been rotated out.
	Compress bool `json:"compress" yaml:"compress"`
	// DaysToKeep deletes date-mode backups older than this many days after
	// each rotation. Zero keeps everything.
	DaysToKeep int `json:"daysToKeep" yaml:"daysToKeep"`
	// UseUTC computes date labels in UTC instead of local time.
	UseUTC bool `json:"utc" yaml:"utc"`
	// Encoding is accepted for configuration compatibility. Chunks are
	// written as raw bytes; only "utf8"/"utf-8" (or empty) are valid.
	Encoding string `json:"encoding" yaml:"encoding"`
	// FileMode is the POSIX mode for newly created log files.
	FileMode os.FileMode `json:"mode" yaml:"mode"`
	// Flags is the open mode: "a" to append (default), "w" to truncate.
	Flags string `json:"flags" yaml:"flags"`
	// DirMode is the POSIX mode for directories the roller creates.
	DirMode os.FileMode `json:"dirMode" yaml:"dirMode"`
	// ArchiveDir relocates backups into another directory. Empty keeps
	// them next to the active file.
	ArchiveDir string `json:"archiveDir" yaml:"archiveDir"`
	// MaxQueueBytes is the Enqueue high-water mark.
	MaxQueueBytes Size `json:"maxQueueBytes" yaml:"maxQueueBytes"`

	// Policy overrides the policy derived from the fields above. Leave nil
	// to get sizeroll or dateroll picked from MaxBytes/DatePattern.
	Policy Policy `json:"-" yaml:"-"`
	// Observer receives lifecycle events. Leave nil for none.
	Observer Observer `json:"-" yaml:"-"`
	// Filer overrides file system procedures, mostly for tests.
	Filer filer.Filer `json:"-" yaml:"-"`
}

// LoadConfig reads a Config from a YAML or JSON file, picking the decoder by
// file extension (.json is JSON, everything else is YAML).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}

		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}

// validate applies defaults and returns the first configuration error. Called
// synchronously by New; configuration errors are never retried.
func (c *Config) validate() error {
	if c.Filename == "" {
		return ErrNoFilename
	}

	if c.DatePattern != "" && c.MaxBytes > 0 {
		return ErrModeConflict
	}

	switch strings.ToLower(c.Encoding) {
	case "", "utf8", "utf-8":
	default:
		return fmt.Errorf("%w: got %q", ErrBadEncoding, c.Encoding)
	}

	if c.Flags == "" {
		c.Flags = FlagsAppend
	}

	if c.Flags != FlagsAppend && c.Flags != FlagsTruncate {
		return fmt.Errorf("%w: got %q", ErrBadFlags, c.Flags)
	}

	if c.FileMode == 0 {
		c.FileMode = FileMode
	}

	if c.DirMode == 0 {
		c.DirMode = DirMode
	}

	if c.MaxQueueBytes == 0 {
		c.MaxQueueBytes = DefaultMaxQueueBytes
	}

	return nil
}

// backups resolves the MaxBackups pointer: absent means 1.
func (c *Config) backups() int {
	if c.MaxBackups == nil {
		return 1
	}

	if *c.MaxBackups < 0 {
		return 0
	}

	return *c.MaxBackups
}

// openFlags maps the configured shorthand to OS open flags.
func (c *Config) openFlags() int {
	if c.Flags == FlagsTruncate {
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	return os.O_WRONLY | os.O_CREATE | os.O_APPEND
}
