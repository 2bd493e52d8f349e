// Package bootconfig loads the merged configuration map a process
// binds into the component carrier's reserved "Configs" slot before
// constructing any component. Loading and validating configuration is
// explicitly a boundary concern, not the container's: this package is
// the boundary.
package bootconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pumped-fn/kernel/component"
	"github.com/pumped-fn/kernel/pkg/schema"
)

// Source describes where Load reads configuration from.
type Source struct {
	// FilePath is a YAML file to read, merged under environment
	// overrides. Empty means environment and defaults only.
	FilePath string
	// Defaults are applied before FilePath and the environment, so
	// either can override them.
	Defaults map[string]any
	// EnvPrefix, if non-empty, restricts automatic environment
	// binding to keys under PREFIX_... and strips the prefix.
	EnvPrefix string
}

// Load merges src's defaults, file, and environment into one map,
// validates it against validator if non-nil, and returns it.
func Load(src Source, validator schema.Schema) (map[string]any, error) {
	v := viper.New()

	for key, value := range src.Defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if src.EnvPrefix != "" {
		v.SetEnvPrefix(src.EnvPrefix)
	}

	if src.FilePath != "" {
		v.SetConfigFile(src.FilePath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("bootconfig: read %s: %w", src.FilePath, err)
		}
	}

	merged := v.AllSettings()

	if validator != nil {
		validated, err := validator.Validate(merged)
		if err != nil {
			return nil, fmt.Errorf("bootconfig: validate: %w", err)
		}
		if m, ok := validated.(map[string]any); ok {
			merged = m
		}
	}

	return merged, nil
}

// Boot loads src's configuration, validates it, and runs fn with it
// bound to component.Configs for fn's dynamic extent.
func Boot[R any](ctx context.Context, src Source, validator schema.Schema, fn func(context.Context) (R, error)) (R, error) {
	cfg, err := Load(src, validator)
	if err != nil {
		var zero R
		return zero, err
	}
	return component.Run(ctx, component.Configs, cfg, fn)
}
