package combiner

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const regexCacheSize = 256

// Скомпилированные регулярки переиспользуются между пересборками в watch режиме
var regexCache *lru.Cache[string, *regexp.Regexp]

func init() {
	cache, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		panic(fmt.Sprintf("combiner: regex cache: %v", err))
	}
	regexCache = cache
}

// Pattern правило сопоставления имени ассета: литерал (подстрока) или регулярное выражение
type Pattern struct {
	literal string
	re      *regexp.Regexp
}

// Literal создаёт шаблон-подстроку
func Literal(text string) Pattern {
	return Pattern{literal: text}
}

// Regex оборачивает готовое регулярное выражение
func Regex(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// MustRegex компилирует выражение, паникует при ошибке. Для констант и тестов.
func MustRegex(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// ParsePattern разбирает шаблон из конфигурации.
// "/source/flags" - регулярное выражение (флаги i, m, s; g, u, y игнорируются),
// любая другая строка - литерал.
func ParsePattern(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, fmt.Errorf("empty pattern")
	}

	source, flags, ok := splitRegexLiteral(raw)
	if !ok {
		return Literal(raw), nil
	}

	var prefix strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix.WriteRune(f)
		case 'g', 'u', 'y':
		default:
			return Pattern{}, fmt.Errorf("pattern %q: unsupported flag %q", raw, f)
		}
	}

	expr := source
	if prefix.Len() > 0 {
		expr = "(?" + prefix.String() + ")" + source
	}

	if re, ok := regexCache.Get(expr); ok {
		return Regex(re), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", raw, err)
	}
	regexCache.Add(expr, re)
	return Regex(re), nil
}

// ParsePatterns разбирает список шаблонов
func ParsePatterns(raw []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p, err := ParsePattern(r)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func splitRegexLiteral(raw string) (source, flags string, ok bool) {
	if len(raw) < 2 || raw[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndex(raw, "/")
	if end <= 0 {
		return "", "", false
	}
	return raw[1:end], raw[end+1:], true
}

// Match сообщает, удовлетворяет ли имя шаблону (поиск, не полное совпадение)
func (p Pattern) Match(name string) bool {
	if p.IsRegex() {
		return p.re.MatchString(name)
	}
	if p.literal == "" {
		return false
	}
	return strings.Contains(name, p.literal)
}

// IsRegex true для шаблона-регулярки
func (p Pattern) IsRegex() bool {
	return p.re != nil
}

// String возвращает шаблон в синтаксисе конфигурации
func (p Pattern) String() string {
	if p.IsRegex() {
		return "/" + p.re.String() + "/"
	}
	return p.literal
}

// MatchAny true, если имя подходит хотя бы под один шаблон
func MatchAny(patterns []Pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
