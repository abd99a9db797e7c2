package log

// Option adjusts one logger setting, such as [WithLevel] or [WithPretty],
// and is passed to [Config] or [Make].
type Option func(config) config

// apply folds opts over cfg in order, so a later option wins.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}
