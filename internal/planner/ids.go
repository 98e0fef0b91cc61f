package planner

import (
	"strconv"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// tempPrefix marks ids minted locally before the server assigns one.
const tempPrefix = "temp-"

// randomSuffix returns a short random token.
func randomSuffix(n int) string {
	s, err := gonanoid.Generate(idAlphabet, n)
	if err != nil {
		return uuid.NewString()[:n]
	}
	return s
}

// newTempID mints a timestamp-based temporary trip id.
func (p *Planner) newTempID() string {
	return tempPrefix + strconv.FormatInt(p.clock.Now().UnixMilli(), 10) + "-" + randomSuffix(4)
}

// derivedID mints a fresh id for a second placed copy of the place with id
// orig: the original id, a timestamp, and a random suffix.
func (p *Planner) derivedID(orig string) string {
	return orig + "-" + strconv.FormatInt(p.clock.Now().UnixMilli(), 10) + "-" + randomSuffix(5)
}

// IsTempID reports whether id was minted locally.
func IsTempID(id string) bool {
	return len(id) > len(tempPrefix) && id[:len(tempPrefix)] == tempPrefix
}
