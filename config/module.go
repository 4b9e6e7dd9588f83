package config

import "go.uber.org/fx"

// Module provides the sections of an already supplied *Config.
var Module = fx.Module("config",
	fx.Provide(func(cfg *Config) DiscordConfig { return cfg.Discord }),
	fx.Provide(func(cfg *Config) LLMConfig { return cfg.LLM }),
	fx.Provide(func(cfg *Config) BuilderConfig { return cfg.Builder }),
	fx.Provide(func(cfg *Config) DialogConfig { return cfg.Dialog }),
	fx.Provide(func(cfg *Config) HTTPConfig { return cfg.HTTP }),
)
