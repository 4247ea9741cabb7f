package combiner

import (
	"fmt"

	"github.com/pv/singlebundle/internal/asset"
	"github.com/pv/singlebundle/internal/logger"
)

const PluginName = "singlebundle"

// Emitter принимает новый артефакт сборки
type Emitter interface {
	EmitFile(name, source string) error
}

// Reporter принимает информационные сообщения
type Reporter interface {
	Info(msg string, args ...any)
}

// Host хост сборки: выходной набор + логирование
type Host interface {
	Emitter
	Reporter
}

// Plugin шаг пост-обработки, запускается после того, как хост сгенерировал все ассеты
type Plugin struct {
	cfg Config
}

// NewPlugin создаёт плагин с конфигурацией opts поверх значений по умолчанию
func NewPlugin(opts Options) *Plugin {
	return &Plugin{cfg: Resolve(opts)}
}

// NewPluginWithConfig создаёт плагин с готовой конфигурацией
func NewPluginWithConfig(cfg Config) *Plugin {
	return &Plugin{cfg: cfg}
}

func (p *Plugin) Name() string { return PluginName }

// Order порядок относительно собственной финализации хоста
func (p *Plugin) Order() string { return "post" }

func (p *Plugin) Config() Config { return p.cfg }

// GenerateBundle склеивает набор, отдаёт артефакт хосту и сообщает имена
// склеенных ассетов. Ошибка возможна только от хоста.
func (p *Plugin) GenerateBundle(set *asset.Set, host Host) (Result, error) {
	res := Combine(set, p.cfg)

	if err := host.EmitFile(res.OutputName, res.Code); err != nil {
		return res, fmt.Errorf("emit %s: %w", res.OutputName, err)
	}

	host.Info("style assets combined", "output", res.OutputName, "names", res.StyleNames)
	host.Info("script assets combined", "output", res.OutputName, "names", res.ScriptNames)
	if res.SvelteKitHash != "" {
		logger.Debug("SvelteKit mount rewritten", "output", res.OutputName, "hash", res.SvelteKitHash)
	}

	return res, nil
}
