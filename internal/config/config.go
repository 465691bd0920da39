package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cochaviz/reboot-to/internal/capability"
	"github.com/cochaviz/reboot-to/internal/firmware"
	"github.com/cochaviz/reboot-to/internal/logging"
)

// EnvPath names the environment variable holding the configuration path.
const EnvPath = "REBOOT_TO_CONFIG"

// Config is the reboot-to configuration.
type Config struct {
	// Efibootmgr is the boot manager utility, a name on PATH or an absolute path.
	Efibootmgr string `yaml:"efibootmgr"`

	// Reboot is the program run by `change --reboot`.
	Reboot string `yaml:"reboot"`

	// FirmwareDir is the firmware pseudo-filesystem probed for UEFI support.
	FirmwareDir string `yaml:"firmware_dir"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	// Level is one of debug, info, warning, error.
	Level string `yaml:"level"`
	// Format is cli or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Efibootmgr:  firmware.DefaultTool,
		Reboot:      firmware.DefaultRebootCommand,
		FirmwareDir: capability.DefaultFirmwareDir,
		Log: LogConfig{
			Level:  "warning",
			Format: "cli",
		},
	}
}

// Path returns the configuration file to load: the flag value when set,
// otherwise the environment variable, otherwise "".
func Path(flagValue string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}
	return strings.TrimSpace(os.Getenv(EnvPath))
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	getLogger().Debug("loading configuration", "path", path)
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseMode(c.Log.Format); err != nil {
		return err
	}
	if strings.ContainsAny(c.Efibootmgr, " \t") {
		return fmt.Errorf("efibootmgr must be a single program, got %q", c.Efibootmgr)
	}
	if strings.ContainsAny(c.Reboot, " \t") {
		return fmt.Errorf("reboot must be a single program, got %q", c.Reboot)
	}
	return nil
}

// fillDefaults restores defaults for keys present but left empty.
func (c *Config) fillDefaults() {
	def := Default()
	if strings.TrimSpace(c.Efibootmgr) == "" {
		c.Efibootmgr = def.Efibootmgr
	}
	if strings.TrimSpace(c.Reboot) == "" {
		c.Reboot = def.Reboot
	}
	if strings.TrimSpace(c.FirmwareDir) == "" {
		c.FirmwareDir = def.FirmwareDir
	}
}
