package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment overrides, e.g. BSDPACK_PACKAGE_DIR.
const EnvPrefix = "BSDPACK"

var settingKeys = []string{
	"package_dir",
	"pkg_tool",
	"work_dir",
	"machine",
	"os_version",
	"keep_staging",
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		PackageDir: DefaultPackageDir,
		PkgTool:    DefaultPkgTool,
	}
}

// LoadSettings resolves Settings from, in increasing precedence: defaults, the
// optional settings file, BSDPACK_* environment variables and flags that were
// set explicitly. Flag names use dashes for the underscores of the keys.
func LoadSettings(flags *pflag.FlagSet, settingsFile string) (Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("package_dir", defaults.PackageDir)
	v.SetDefault("pkg_tool", defaults.PkgTool)
	v.SetDefault("work_dir", defaults.WorkDir)
	v.SetDefault("machine", defaults.Machine)
	v.SetDefault("os_version", defaults.OSRelease)
	v.SetDefault("keep_staging", defaults.KeepStaging)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range settingKeys {
			flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", flag.Name, err)
			}
		}
	}

	if settingsFile != "" {
		if _, err := os.Stat(settingsFile); err != nil {
			return Settings{}, fmt.Errorf("settings file: %w", err)
		}
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings file %s: %w", settingsFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}
