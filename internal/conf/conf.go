package conf

import (
	"github.com/spf13/viper"

	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Load builds the configuration: defaults first, then the optional config
// file on top, then validation. An empty path yields pure defaults. The
// returned value is read-only for the rest of the run.
func Load(confPath string) (*viper.Viper, error) {
	cfg := viper.New()
	SetDefaultValues(cfg)

	if confPath != "" {
		cfg.SetConfigFile(confPath)
		if err := cfg.ReadInConfig(); err != nil {
			return nil, errs.NewConfigError("read config file", err)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
