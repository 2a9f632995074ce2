package core

// Config defines construction settings shared by composite processors
// that pre-allocate per-block scratch (converters, mixers, spectral
// adapters). Buffers longer than MaxBlock frames are processed in
// MaxBlock-sized slices, so MaxBlock bounds scratch memory, not the
// caller's buffer length.
type Config struct {
	MaxBlock int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults for offline and streaming use.
func DefaultConfig() Config {
	return Config{
		MaxBlock: 1024,
	}
}

// WithMaxBlock sets the maximum frames handled per internal slice.
func WithMaxBlock(frames int) Option {
	return func(cfg *Config) {
		if frames > 0 {
			cfg.MaxBlock = frames
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
