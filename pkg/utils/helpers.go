package utils

import (
	"crypto/rand"
	"encoding/hex"

	petname "github.com/dustinkirkland/golang-petname"
)

// RandomHex generates a random hexadecimal string of length 2n
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Nickname returns a readable session name such as "brave-otter-3fa1".
func Nickname() string {
	return petname.Generate(2, "-") + "-" + RandomHex(2)
}
