package config

import (
	"time"

	"github.com/spf13/viper"
)

// App carries the process-level settings shared by any binary in this
// repo: where the log config lives and how long shutdown may take.
type App struct {
	LogConfigFile   string        `mapstructure:"log_config_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	// empty log config file selects the built-in defaults
	v.SetDefault(p("log_config_file"), "")
	v.SetDefault(p("shutdown_timeout"), "10s")
}
