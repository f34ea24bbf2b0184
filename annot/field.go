package annot

import (
	"fmt"
	"strconv"

	"github.com/dasnellings/mesic/config"
)

// Kind tags the outcome of parsing one table cell.
type Kind int

const (
	Numeric Kind = iota
	Placeholder
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Placeholder:
		return "placeholder"
	default:
		return "malformed"
	}
}

// Field is a parsed cell. Value is only meaningful for Numeric.
type Field struct {
	Kind  Kind
	Value float64
	Raw   string
}

// ParseField classifies s. "-" and "." are placeholders for a value that
// was not computed; anything else that is not a float is malformed.
func ParseField(s string) Field {
	switch s {
	case "-", ".":
		return Field{Kind: Placeholder, Raw: s}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Field{Kind: Malformed, Raw: s}
	}
	return Field{Kind: Numeric, Value: v, Raw: s}
}

// Column is a 0-based column position with the name it is reported under.
type Column struct {
	Name  string
	Index int
}

// Col resolves a 1-based column number, as given on the command line.
func Col(name string, oneBased int) (Column, error) {
	if oneBased < 1 {
		return Column{}, &config.Error{Op: "column", Column: name, Value: fmt.Sprint(oneBased), Err: config.ErrBadColumn}
	}
	return Column{Name: name, Index: oneBased - 1}, nil
}
