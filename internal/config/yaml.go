package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pv/singlebundle/internal/combiner"
)

// ClassFile настройки класса ассетов в YAML
type ClassFile struct {
	Patterns []string `yaml:"patterns,omitempty"`
	Pre      *string  `yaml:"pre,omitempty"`
	Post     *string  `yaml:"post,omitempty"`
}

// IntegrationsFile переключатели интеграций в YAML
type IntegrationsFile struct {
	SvelteKit *bool `yaml:"sveltekit,omitempty"`
}

// ConfigFile представляет структуру YAML файла конфигурации
type ConfigFile struct {
	OutputName   *string           `yaml:"outputName,omitempty"`
	Style        *ClassFile        `yaml:"style,omitempty"`
	Script       *ClassFile        `yaml:"script,omitempty"`
	Integrations *IntegrationsFile `yaml:"integrations,omitempty"`
}

// LoadFromYAML загружает конфигурацию из YAML файла
func LoadFromYAML(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configFile ConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Валидация шаблонов сразу, чтобы ошибка указывала на файл
	if _, err := configFile.Options(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &configFile, nil
}

// Options переводит YAML в частичные настройки комбайнера
func (f *ConfigFile) Options() (combiner.Options, error) {
	var opts combiner.Options
	if f == nil {
		return opts, nil
	}

	opts.OutputName = f.OutputName

	style, err := f.Style.options("style")
	if err != nil {
		return combiner.Options{}, err
	}
	opts.Style = style

	script, err := f.Script.options("script")
	if err != nil {
		return combiner.Options{}, err
	}
	opts.Script = script

	if f.Integrations != nil {
		opts.Integrations = &combiner.IntegrationOptions{SvelteKit: f.Integrations.SvelteKit}
	}

	return opts, nil
}

func (c *ClassFile) options(class string) (*combiner.ClassOptions, error) {
	if c == nil {
		return nil, nil
	}
	patterns, err := combiner.ParsePatterns(c.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%s patterns: %w", class, err)
	}
	return &combiner.ClassOptions{
		Patterns: patterns,
		Pre:      c.Pre,
		Post:     c.Post,
	}, nil
}
