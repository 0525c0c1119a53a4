package exam

import "fmt"

// CodePrefix starts every generated session code.
const CodePrefix = "TH"

const codeSpace = 1000

// IntSource is satisfied by dependencies/random.Random.
type IntSource interface {
	Intn(n int) int
}

// NewCode draws a session code "TH000".."TH999" uniformly. Uniqueness is
// enforced by the store, not here.
func NewCode(src IntSource) string {
	return fmt.Sprintf("%s%03d", CodePrefix, src.Intn(codeSpace))
}
