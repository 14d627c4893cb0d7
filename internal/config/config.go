// Package config loads typed configuration from the environment through
// viper. Each package exposes a Setup(v, prefix) that registers its
// defaults; the binary composes them under one Load call.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance that reads the environment with
// dots mapped to underscores, so "http.addr" binds to HTTP_ADDR.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	return v
}

// Load applies configure (defaults and bindings) and unmarshals the
// result into c.
func Load[T any](c *T, configure func(v *viper.Viper)) (*T, error) {
	v := NewViper()

	configure(v)
	return c, v.Unmarshal(c)
}
