// Package codegen draws the short codes consumers use to link with an admin.
package codegen

import "math/rand"

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
)

// Generator produces linking codes of the form "ABC-123", drawn uniformly
// from the 26^3 * 10^3 combination space. It carries no state and gives no
// uniqueness guarantee; callers retry against the user directory on
// collision.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (Generator) Generate() string {
	b := make([]byte, 7)
	for i := 0; i < 3; i++ {
		b[i] = letters[rand.Intn(len(letters))]
	}
	b[3] = '-'
	for i := 4; i < 7; i++ {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
