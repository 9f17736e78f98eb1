package config

import (
	"flag"
	"strconv"
)

// Overrides binds command-line flags to Config fields. Only flags that were explicitly set override the values loaded
// from the config file.
type Overrides struct {
	fs   *flag.FlagSet
	sets map[string]func(cfg *Config, value string) error
}

// float32Value parses a float32 from a flag value.
func float32Value(value string) (float32, error) {
	f, err := strconv.ParseFloat(value, 32)
	return float32(f), err
}

// RegisterFlags registers the configuration's flags on fs, using the defaults as the documented default values.
func RegisterFlags(fs *flag.FlagSet) *Overrides {

	o := &Overrides{fs: fs, sets: map[string]func(cfg *Config, value string) error{}}
	def := Default()

	str := func(name, value, usage string, set func(cfg *Config, v string)) {
		fs.String(name, value, usage)
		o.sets[name] = func(cfg *Config, v string) error { set(cfg, v); return nil }
	}

	integer := func(name string, value int, usage string, set func(cfg *Config, v int)) {
		fs.Int(name, value, usage)
		o.sets[name] = func(cfg *Config, v string) error {
			i, err := strconv.Atoi(v)
			if err == nil {
				set(cfg, i)
			}
			return err
		}
	}

	float := func(name string, value float32, usage string, set func(cfg *Config, v float32)) {
		fs.Float64(name, float64(value), usage)
		o.sets[name] = func(cfg *Config, v string) error {
			f, err := float32Value(v)
			if err == nil {
				set(cfg, f)
			}
			return err
		}
	}

	boolean := func(name string, value bool, usage string, set func(cfg *Config, v bool)) {
		fs.Bool(name, value, usage)
		o.sets[name] = func(cfg *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err == nil {
				set(cfg, b)
			}
			return err
		}
	}

	integer("width", def.Window.Width, "window width", func(cfg *Config, v int) { cfg.Window.Width = v })
	integer("height", def.Window.Height, "window height", func(cfg *Config, v int) { cfg.Window.Height = v })
	boolean("fullscreen", def.Window.Fullscreen, "start in fullscreen", func(cfg *Config, v bool) { cfg.Window.Fullscreen = v })
	str("env", def.Assets.Environment, "environment map URL or path (.hdr)", func(cfg *Config, v string) { cfg.Assets.Environment = v })
	str("model", def.Assets.Model, "model URL or path (.glb)", func(cfg *Config, v string) { cfg.Assets.Model = v })
	str("root", def.Assets.Root, "directory relative asset paths are resolved against", func(cfg *Config, v string) { cfg.Assets.Root = v })
	float("exposure", def.Assets.Exposure, "tone-mapping exposure", func(cfg *Config, v float32) { cfg.Assets.Exposure = v })
	float("fov", def.Camera.FieldOfView, "vertical field of view in degrees", func(cfg *Config, v float32) { cfg.Camera.FieldOfView = v })
	integer("rain", def.Rain.Count, "number of rain drops", func(cfg *Config, v int) { cfg.Rain.Count = v })
	str("rain-color", def.Rain.Color, "rain drop color (#rrggbb)", func(cfg *Config, v string) { cfg.Rain.Color = v })
	boolean("dither", def.Dither.Enabled, "enable the black and white dithering pass", func(cfg *Config, v bool) { cfg.Dither.Enabled = v })
	float("dither-strength", def.Dither.Strength, "weight of the dither pattern against noise (0-1)", func(cfg *Config, v float32) { cfg.Dither.Strength = v })
	float("dither-scale", def.Dither.PatternScale, "size of a dither cell in pixels", func(cfg *Config, v float32) { cfg.Dither.PatternScale = v })
	str("log-level", def.Log.Level, "log level (debug, info, warn, error)", func(cfg *Config, v string) { cfg.Log.Level = v })
	boolean("watch", def.Watch, "reload the config file when it changes", func(cfg *Config, v bool) { cfg.Watch = v })

	return o

}

// Apply copies every explicitly set flag onto cfg.
func (o *Overrides) Apply(cfg *Config) error {
	var err error
	o.fs.Visit(func(f *flag.Flag) {
		set, ok := o.sets[f.Name]
		if !ok || err != nil {
			return
		}
		err = set(cfg, f.Value.String())
	})
	return err
}
