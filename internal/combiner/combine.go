package combiner

import (
	"fmt"
	"strings"

	"github.com/pv/singlebundle/internal/asset"
)

const styleSnippet = "const inlineStyle = document.createElement('style');\n" +
	"inlineStyle.innerHTML = `%s`;\n" +
	"\n" +
	"document.body.appendChild(inlineStyle);\n"

// Result итог склейки
type Result struct {
	OutputName  string
	Code        string
	StyleNames  []string
	ScriptNames []string
	// SvelteKitHash хэш, под который были переписаны шаблоны ("" если перезаписи не было)
	SvelteKitHash string
}

// Empty true, если ни один ассет не попал в склейку
func (r Result) Empty() bool {
	return len(r.StyleNames) == 0 && len(r.ScriptNames) == 0
}

// Combine склеивает стили и скрипты набора в один скрипт.
// Порядок склейки совпадает с порядком набора, cfg не изменяется.
func Combine(set *asset.Set, cfg Config) Result {
	res := Result{OutputName: cfg.OutputName}

	var style, script strings.Builder
	set.Each(func(a *asset.Asset) bool {
		switch Classify(a.Name, cfg) {
		case ClassStyle:
			style.WriteString(a.Text())
			res.StyleNames = append(res.StyleNames, a.Name)
		case ClassScript:
			script.WriteString(a.Text())
			res.ScriptNames = append(res.ScriptNames, a.Name)
		}
		return true
	})

	var code string
	if script.Len() > 0 {
		js := script.String()
		tpl := Templates{Pre: cfg.Script.Pre, Post: cfg.Script.Post}
		if cfg.Integrations.SvelteKit {
			if hash := DetectSvelteKitHash(js); hash != "" {
				tpl = RewriteSvelteKit(tpl, hash)
				res.SvelteKitHash = hash
			}
		}
		code = tpl.Pre + "\n" + js + "\n" + tpl.Post
	}

	if style.Len() > 0 {
		code = "\n" + code + "\n\n" + cfg.Style.Pre + InlineStyle(style.String()) + cfg.Style.Post
	}

	res.Code = code
	return res
}

// InlineStyle возвращает код, вставляющий css в <style> в конце document.body.
// Обратные слэши удваиваются, т.к. css попадает в шаблонную строку.
func InlineStyle(css string) string {
	escaped := strings.ReplaceAll(css, `\`, `\\`)
	return fmt.Sprintf(styleSnippet, escaped)
}
