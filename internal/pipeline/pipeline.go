package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pv/singlebundle/internal/asset"
	"github.com/pv/singlebundle/internal/combiner"
	"github.com/pv/singlebundle/internal/livereload"
	"github.com/pv/singlebundle/internal/logger"
	"github.com/pv/singlebundle/internal/storage"
)

// Broadcaster получатель уведомлений о новом bundle
type Broadcaster interface {
	Broadcast(ev livereload.Event)
}

// Pipeline один проход: директория сборки -> комбайнер -> артефакт + история
type Pipeline struct {
	Dir             string
	ProjectID       string
	RemoveOriginals bool
	// Retention срок хранения отчётов истории (0 = хранить всё)
	Retention time.Duration

	plugin  *combiner.Plugin
	store   storage.Storage
	notify  Broadcaster
	nowFunc func() time.Time
}

// New создаёт pipeline. store и notify могут быть nil.
func New(dir, projectID string, plugin *combiner.Plugin, store storage.Storage, notify Broadcaster) *Pipeline {
	return &Pipeline{
		Dir:       dir,
		ProjectID: projectID,
		plugin:    plugin,
		store:     store,
		notify:    notify,
		nowFunc:   time.Now,
	}
}

// Output имя артефакта
func (p *Pipeline) Output() string {
	return p.plugin.Config().OutputName
}

// Run читает директорию, склеивает ассеты, пишет артефакт и сохраняет отчёт.
// Артефакт предыдущего запуска в склейку не попадает. С RemoveOriginals
// прогон без исходников оставляет предыдущий артефакт как есть.
func (p *Pipeline) Run() (storage.Report, error) {
	start := p.nowFunc()
	output := p.Output()

	set, err := asset.LoadDir(p.Dir, output)
	if err != nil {
		return storage.Report{}, err
	}

	if p.RemoveOriginals && p.outputExists(output) {
		if res := combiner.Combine(set, p.plugin.Config()); res.Empty() {
			logger.Info("Nothing to combine, keeping previous bundle", "dir", p.Dir, "output", output)
			return storage.Report{ProjectID: p.ProjectID, Output: output, CreatedAt: start}, nil
		}
	}

	host := asset.NewDirHost(p.Dir, p.RemoveOriginals)
	res, err := p.plugin.GenerateBundle(set, host)
	if err != nil {
		return storage.Report{}, err
	}

	combined := append(append([]string(nil), res.StyleNames...), res.ScriptNames...)
	if err := host.Prune(output, combined); err != nil {
		return storage.Report{}, fmt.Errorf("prune originals: %w", err)
	}

	report := storage.NewReport(p.ProjectID, res, start)
	p.record(report)
	if p.notify != nil {
		p.notify.Broadcast(livereload.BundleEvent(output, report.Bytes))
	}

	logger.Info("Bundle written",
		"dir", p.Dir,
		"files", host.Emitted(),
		"styles", len(res.StyleNames),
		"scripts", len(res.ScriptNames),
		"input_bytes", inputBytes(set, combined),
		"bytes", report.Bytes,
		"duration", p.nowFunc().Sub(start).String(),
	)
	if skipped := len(set.Names()) - len(combined); skipped > 0 {
		logger.Debug("Assets left as is", "dir", p.Dir, "count", skipped)
	}
	return report, nil
}

// record сохраняет отчёт и чистит устаревшую историю. Ошибки истории не критичны для сборки.
func (p *Pipeline) record(report storage.Report) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(report); err != nil {
		logger.Warn("Failed to save build report", "output", report.Output, "error", err)
	}
	if p.Retention > 0 {
		if err := p.store.Cleanup(report.CreatedAt.Add(-p.Retention)); err != nil {
			logger.Warn("Failed to clean up build history", "error", err)
		}
	}
}

func (p *Pipeline) outputExists(output string) bool {
	info, err := os.Stat(filepath.Join(p.Dir, filepath.FromSlash(output)))
	return err == nil && info.Mode().IsRegular()
}

func inputBytes(set *asset.Set, names []string) int {
	total := 0
	for _, name := range names {
		if a, ok := set.Get(name); ok {
			total += a.Size()
		}
	}
	return total
}
