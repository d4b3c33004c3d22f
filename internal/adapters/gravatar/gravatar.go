package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Lookup builds Gravatar image URLs. It never calls the network; a missing
// avatar renders the "identicon" fallback on Gravatar's side.
type Lookup struct {
	Size int
}

func New() *Lookup {
	return &Lookup{Size: 200}
}

func (l *Lookup) URL(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("gravatar: empty email")
	}
	sum := md5.Sum([]byte(email))

	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString(hex.EncodeToString(sum[:]))
	b.WriteString("?d=identicon")
	if l.Size > 0 {
		b.WriteString("&s=")
		b.WriteString(strconv.Itoa(l.Size))
	}
	return b.String(), nil
}
