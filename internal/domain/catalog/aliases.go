package catalog

import "fmt"

// Aliases maps a normalized raw token to the intermediate key that is retried
// against a dictionary section.
type Aliases map[string]string

// NewAliases builds an alias table from alternating raw/target pairs. Raw keys
// are normalized; targets are kept as written.
func NewAliases(pairs ...string) Aliases {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("catalog: alias pairs must have even length, got %d", len(pairs)))
	}
	a := make(Aliases, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		a[Normalize(pairs[i])] = pairs[i+1]
	}
	return a
}

// Resolve returns the alias target for raw after normalization.
func (a Aliases) Resolve(raw string) (string, bool) {
	target, ok := a[Normalize(raw)]
	return target, ok
}
