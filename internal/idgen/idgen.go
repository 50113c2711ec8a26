// Package idgen provides ID generation for board tasks. Random IDs are
// backed by nanoid; board and spec IDs are derived from the source task.
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPrefix is prepended to every generated random ID.
var DefaultPrefix = "bp-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// ScopePrefix is the namespace for board and spec IDs.
const ScopePrefix = "arch"

// sourceSuffixLen is how many trailing characters of a source task ID are
// kept in derived IDs.
const sourceSuffixLen = 8

// Generate returns a new unique ID using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Generator derives board task IDs. The zero value uses the wall clock and
// nanoid; tests inject Now and Random for deterministic output.
type Generator struct {
	Now    func() time.Time
	Random func(prefix string) (string, error)
}

// Default is the Generator used when callers do not supply one.
var Default = &Generator{}

func (g *Generator) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Session returns the ID namespace for a session: "arch" alone, or "arch-"
// followed by the first eight characters of the session ID.
func Session(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ScopePrefix
	}
	if r := []rune(sessionID); len(r) > sourceSuffixLen {
		sessionID = string(r[:sourceSuffixLen])
	}
	return ScopePrefix + "-" + sessionID
}

// SpecID returns the stable storage slot for a source task. It carries no
// time component, so repeated exports of one task converge on one slot.
func SpecID(scope, sourceID string) string {
	return scope + "-" + tail(sourceID)
}

// BoardID returns a fresh board task ID for a source task. The base-36
// millisecond suffix keeps repeated exports of the same task distinct.
func (g *Generator) BoardID(scope, sourceID string) string {
	return SpecID(scope, sourceID) + "-" + strconv.FormatInt(g.now().UnixMilli(), 36)
}

// SubtaskID returns a random ID for a checklist item.
func (g *Generator) SubtaskID() (string, error) {
	if g != nil && g.Random != nil {
		return g.Random("sub-")
	}
	return GenerateWithPrefix("sub-")
}

// Timestamp returns the creation time stamped on new records.
func (g *Generator) Timestamp() time.Time {
	return g.now().UTC()
}

func tail(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > sourceSuffixLen {
		r = r[len(r)-sourceSuffixLen:]
	}
	return string(r)
}
