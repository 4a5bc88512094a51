package valueobjects

import (
	"fmt"
	"strings"
)

// InteractionKind identifies what the user did with a meme
type InteractionKind string

const (
	KindView  InteractionKind = "view"
	KindCopy  InteractionKind = "copy"
	KindClick InteractionKind = "click"
)

// ParseInteractionKind accepts the singular kind names and the plural
// counter names ("views", "copies", "clicks"), case-insensitively.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view", "views":
		return KindView, nil
	case "copy", "copies":
		return KindCopy, nil
	case "click", "clicks":
		return KindClick, nil
	default:
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
}

// String returns the canonical name of the kind
func (k InteractionKind) String() string {
	return string(k)
}
