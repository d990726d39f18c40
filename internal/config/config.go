package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aaptel/rpm-changes-merger/internal/env"
	"github.com/spf13/viper"
)

var (
	vCfg   = newViper()
	cfgDir string
)

const (
	sortWholeFileKey     = "sort_whole_file"
	driverNameKey        = "driver_name"
	attributesPatternKey = "attributes_pattern"

	envPrefix = "RPM_CHANGES_MERGER"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(sortWholeFileKey, false)
	v.SetDefault(driverNameKey, "rpm-changes")
	v.SetDefault(attributesPatternKey, "*.changes")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads config.yaml from the configuration directory. A missing file is not an error.
func Load() error {
	dir := env.ConfigDir()
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".rpm-changes-merger")
	}

	cfgDir = dir
	vCfg = newViper()

	vCfg.SetConfigName("config")
	vCfg.SetConfigType("yaml")
	vCfg.AddConfigPath(cfgDir)

	if err := vCfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

func GetConfigDir() string {
	return cfgDir
}

// GetSortWholeFile is the default for re-sorting the whole merged changelog.
func GetSortWholeFile() bool {
	return vCfg.GetBool(sortWholeFileKey)
}

// GetDriverName is the name the merge driver is registered under in git config.
func GetDriverName() string {
	return vCfg.GetString(driverNameKey)
}

// GetAttributesPattern is the .gitattributes pattern routed to the merge driver.
func GetAttributesPattern() string {
	return vCfg.GetString(attributesPatternKey)
}
