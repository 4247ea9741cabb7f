package combiner

const DefaultOutputName = "bundle.js"

// ClassConfig настройки одного класса ассетов (style или script)
type ClassConfig struct {
	Patterns []Pattern
	Pre      string
	Post     string
}

// Integrations переключатели интеграций с фреймворками
type Integrations struct {
	// SvelteKit включает перезапись точки старта приложения SvelteKit
	SvelteKit bool
}

// Config полностью заполненная конфигурация комбайнера
type Config struct {
	OutputName   string
	Style        ClassConfig
	Script       ClassConfig
	Integrations Integrations
}

// ClassOptions частичные настройки класса, nil = значение по умолчанию
type ClassOptions struct {
	Patterns []Pattern
	Pre      *string
	Post     *string
}

// IntegrationOptions частичные настройки интеграций
type IntegrationOptions struct {
	SvelteKit *bool
}

// Options пользовательские настройки, любое поле может отсутствовать
type Options struct {
	OutputName   *string
	Style        *ClassOptions
	Script       *ClassOptions
	Integrations *IntegrationOptions
}

// DefaultConfig возвращает конфигурацию по умолчанию: /\.css$/m, /\.js$/m, bundle.js
func DefaultConfig() Config {
	return Config{
		OutputName: DefaultOutputName,
		Style: ClassConfig{
			Patterns: []Pattern{MustRegex(`(?m)\.css$`)},
		},
		Script: ClassConfig{
			Patterns: []Pattern{MustRegex(`(?m)\.js$`)},
		},
	}
}

// Merge накладывает opts на defaults поле за полем.
// Пустой список шаблонов и пустое имя выхода считаются отсутствующими.
func Merge(opts Options, defaults Config) Config {
	cfg := Config{
		OutputName:   defaults.OutputName,
		Style:        mergeClass(opts.Style, defaults.Style),
		Script:       mergeClass(opts.Script, defaults.Script),
		Integrations: defaults.Integrations,
	}

	if opts.OutputName != nil && *opts.OutputName != "" {
		cfg.OutputName = *opts.OutputName
	}
	if opts.Integrations != nil && opts.Integrations.SvelteKit != nil {
		cfg.Integrations.SvelteKit = *opts.Integrations.SvelteKit
	}

	return cfg
}

func mergeClass(opts *ClassOptions, defaults ClassConfig) ClassConfig {
	cfg := ClassConfig{
		Patterns: append([]Pattern(nil), defaults.Patterns...),
		Pre:      defaults.Pre,
		Post:     defaults.Post,
	}
	if opts == nil {
		return cfg
	}
	if len(opts.Patterns) > 0 {
		cfg.Patterns = append([]Pattern(nil), opts.Patterns...)
	}
	if opts.Pre != nil {
		cfg.Pre = *opts.Pre
	}
	if opts.Post != nil {
		cfg.Post = *opts.Post
	}
	return cfg
}

// Resolve эквивалент Merge(opts, DefaultConfig())
func Resolve(opts Options) Config {
	return Merge(opts, DefaultConfig())
}
