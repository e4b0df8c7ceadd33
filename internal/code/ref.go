package code

import (
	"errors"
	"strings"
)

// VariableRef names a variable and an optional attribute chain: a, a.b, a.b.c.
type VariableRef struct {
	Name      string
	Attribute *VariableRef
}

var errEmptyRef = errors.New("empty variable reference")

func ParseRef(s string) (VariableRef, error) {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return VariableRef{}, errEmptyRef
		}
	}
	return refFromPath(parts), nil
}

// MustRef is ParseRef for references known to be well formed.
func MustRef(s string) VariableRef {
	ref, err := ParseRef(s)
	if err != nil {
		panic("code: invalid variable reference " + `"` + s + `"`)
	}
	return ref
}

func refFromPath(parts []string) VariableRef {
	ref := VariableRef{Name: parts[0]}
	if len(parts) > 1 {
		next := refFromPath(parts[1:])
		ref.Attribute = &next
	}
	return ref
}

func (r VariableRef) Path() []string {
	out := []string{r.Name}
	for a := r.Attribute; a != nil; a = a.Attribute {
		out = append(out, a.Name)
	}
	return out
}

func (r VariableRef) String() string {
	return strings.Join(r.Path(), ".")
}

func (r VariableRef) Clone() VariableRef {
	return refFromPath(r.Path())
}
