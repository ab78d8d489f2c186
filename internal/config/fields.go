package config

import (
	"strings"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
)

// Field describes one configuration key.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that sets the field.
func (f Field) Env() string {
	return strings.ToUpper(AppName + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Fields lists every key with its default, in display order.
func Fields() []Field {
	return []Field{
		{Key: "store.backend", Value: string(brand.BackendAuto), Description: "brand store backend: auto, postgres, file or memory"},
		{Key: "store.database_url", Value: "", Description: "PostgreSQL connection string for the hosted store"},
		{Key: "store.data_dir", Value: DataDir(), Description: "directory of the local brand store"},
		{Key: "ramp.curve", Value: string(colour.CurveLinear), Description: "default lightness curve for ramps"},
		{Key: "image.cache_dir", Value: CacheDir(), Description: "directory where downloaded logos are cached"},
		{Key: "export.template_dir", Value: TemplateDir(), Description: "directory of custom export templates"},
		{Key: "log.level", Value: "info", Description: "log level: trace, debug, info, warn, error or off"},
		{Key: "log.json", Value: false, Description: "write logs as JSON lines"},
	}
}

// Get returns the field with the given key.
func Get(key string) (Field, bool) {
	for _, f := range Fields() {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
