package combiner

// Class класс ассета
type Class int

const (
	ClassNone Class = iota
	ClassStyle
	ClassScript
)

func (c Class) String() string {
	switch c {
	case ClassStyle:
		return "style"
	case ClassScript:
		return "script"
	default:
		return "none"
	}
}

// Classify определяет класс ассета по имени. Style проверяется первым:
// имя, подходящее под оба класса, считается стилем.
func Classify(name string, cfg Config) Class {
	switch {
	case MatchAny(cfg.Style.Patterns, name):
		return ClassStyle
	case MatchAny(cfg.Script.Patterns, name):
		return ClassScript
	default:
		return ClassNone
	}
}
