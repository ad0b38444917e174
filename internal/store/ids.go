package store

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const claimIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewClaimID returns a claim reference of the form BT-XXXXXX
func NewClaimID() string {
	var b strings.Builder
	b.WriteString("BT-")
	for i := 0; i < 6; i++ {
		b.WriteByte(claimIDAlphabet[rand.IntN(len(claimIDAlphabet))])
	}
	return b.String()
}

// NewGrievanceID returns a ticket reference of the form GR-NNNN (1000-9999)
func NewGrievanceID() string {
	return "GR-" + strconv.Itoa(rand.IntN(9000)+1000)
}

// uniqueID draws from gen until exists reports false
func uniqueID(gen func() string, exists func(string) bool) (string, error) {
	for i := 0; i < 64; i++ {
		id := gen()
		if !exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: identifier space exhausted", ErrDuplicateID)
}
