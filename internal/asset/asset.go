package asset

import (
	"strings"
	"unicode/utf8"
)

// Kind различает отрендеренный чанк и сырой ассет
type Kind int

const (
	// KindChunk - текст уже отрендерен (Code)
	KindChunk Kind = iota
	// KindAsset - сырой payload (Source), текст или бинарные данные
	KindAsset
)

func (k Kind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Asset один выходной файл сборщика
type Asset struct {
	Name   string
	Kind   Kind
	Code   string
	Source []byte
}

// Chunk создаёт ассет с отрендеренным текстом
func Chunk(name, code string) *Asset {
	return &Asset{Name: name, Kind: KindChunk, Code: code}
}

// Raw создаёт ассет с сырым payload
func Raw(name string, source []byte) *Asset {
	return &Asset{Name: name, Kind: KindAsset, Source: source}
}

// Text возвращает содержимое ассета как строку.
// Невалидные UTF-8 последовательности заменяются на U+FFFD, nil ассет даёт "".
func (a *Asset) Text() string {
	if a == nil {
		return ""
	}
	if a.Kind == KindChunk {
		return a.Code
	}
	if len(a.Source) == 0 {
		return ""
	}
	if utf8.Valid(a.Source) {
		return string(a.Source)
	}
	return strings.ToValidUTF8(string(a.Source), "\uFFFD")
}

// Size размер содержимого в байтах
func (a *Asset) Size() int {
	if a == nil {
		return 0
	}
	if a.Kind == KindChunk {
		return len(a.Code)
	}
	return len(a.Source)
}
