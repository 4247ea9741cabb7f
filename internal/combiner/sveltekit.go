package combiner

import (
	"fmt"
	"regexp"
)

// SvelteKit кладёт конфиг старта в this.__sveltekit_<hash>, что после склейки
// в один файл перестаёт указывать на globalThis, а app.start теряет элемент монтирования.
var svelteKitHashRe = regexp.MustCompile(`this\.__sveltekit_([a-zA-Z0-9]+)=`)

// svelteKitTarget локальная переменная с родителем текущего <script>
const svelteKitTarget = "sveltekitTarget"

// Templates пара pre/post шаблонов скрипта
type Templates struct {
	Pre  string
	Post string
}

// DetectSvelteKitHash ищет хэш сборки SvelteKit, "" если не найден
func DetectSvelteKitHash(script string) string {
	m := svelteKitHashRe.FindStringSubmatch(script)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// RewriteSvelteKit возвращает шаблоны с объявлением __sveltekit_<hash> в pre
// и вызовом app.start в post. Пустой hash возвращает tpl без изменений.
func RewriteSvelteKit(tpl Templates, hash string) Templates {
	if hash == "" {
		return tpl
	}

	global := "globalThis.__sveltekit_" + hash
	pre := fmt.Sprintf(`%s = {
	base: location.pathname.split('/').slice(0, -1).join('/')
};
const %s = document.currentScript.parentElement;
`, global, svelteKitTarget)
	post := fmt.Sprintf("%s.app.start(%s);\n", global, svelteKitTarget)

	return Templates{
		Pre:  pre + tpl.Pre,
		Post: post + tpl.Post,
	}
}
