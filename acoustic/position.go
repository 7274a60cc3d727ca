package acoustic

import "fmt"

// Position tags where a unit sits inside a word.
type Position uint8

const (
	PosInternal Position = iota
	PosBegin
	PosEnd
	PosSingle
)

// NumPositions is the number of distinct Position values.
const NumPositions = 4

// AllPositions lists every position in index order.
func AllPositions() []Position {
	return []Position{PosInternal, PosBegin, PosEnd, PosSingle}
}

// IsWordBeginning reports whether a unit at this position starts a word.
func (p Position) IsWordBeginning() bool { return p == PosBegin || p == PosSingle }

// IsWordEnd reports whether a unit at this position ends a word.
func (p Position) IsWordEnd() bool { return p == PosEnd || p == PosSingle }

func (p Position) String() string {
	switch p {
	case PosInternal:
		return "i"
	case PosBegin:
		return "b"
	case PosEnd:
		return "e"
	case PosSingle:
		return "s"
	}
	return fmt.Sprintf("Position(%d)", uint8(p))
}

// ParsePosition converts the single-letter form produced by String.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "i":
		return PosInternal, nil
	case "b":
		return PosBegin, nil
	case "e":
		return PosEnd, nil
	case "s":
		return PosSingle, nil
	}
	return 0, fmt.Errorf("unknown HMM position %q", s)
}
