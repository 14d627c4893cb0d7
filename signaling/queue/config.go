package queue

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// TTL is the retention window; signals older than this are discarded
	// on the next sweep.
	TTL time.Duration `mapstructure:"ttl"`

	// SweepInterval is the period between eviction sweeps.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("ttl"), "30s")
	v.SetDefault(p("sweep_interval"), "30s")
}
