package asset

// Set упорядоченный набор ассетов: порядок итерации совпадает с порядком добавления.
// Не потокобезопасен, каждая сборка владеет своим Set.
type Set struct {
	order  []string
	assets map[string]*Asset
}

// NewSet создаёт набор из ассетов в переданном порядке
func NewSet(assets ...*Asset) *Set {
	s := &Set{assets: make(map[string]*Asset, len(assets))}
	for _, a := range assets {
		s.Add(a)
	}
	return s
}

// Add добавляет ассет. Повторное имя заменяет содержимое, позиция сохраняется.
func (s *Set) Add(a *Asset) {
	if a == nil {
		return
	}
	if s.assets == nil {
		s.assets = make(map[string]*Asset)
	}
	if _, exists := s.assets[a.Name]; !exists {
		s.order = append(s.order, a.Name)
	}
	s.assets[a.Name] = a
}

// Get возвращает ассет по имени
func (s *Set) Get(name string) (*Asset, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.assets[name]
	return a, ok
}

// Names возвращает имена в порядке добавления
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len количество ассетов
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Each обходит ассеты по порядку, пока fn возвращает true
func (s *Set) Each(fn func(a *Asset) bool) {
	if s == nil {
		return
	}
	for _, name := range s.order {
		if !fn(s.assets[name]) {
			return
		}
	}
}
