package event

import "strings"

// Topic represents a hierarchical event type using dot notation.
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Validate checks that the topic has no empty segments.
func (t Topic) Validate() error {
	if t == "" {
		return ErrInvalidTopic
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return ErrInvalidTopic
		}
	}
	return nil
}

// Matches reports whether the concrete topic t is matched by pattern.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t {
		return true
	}
	return matchSegments(pattern.Segments(), t.Segments())
}

func matchSegments(pattern, topic []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case WildcardMulti:
			rest := pattern[1:]
			for i := 0; i <= len(topic); i++ {
				if matchSegments(rest, topic[i:]) {
					return true
				}
			}
			return false
		case WildcardSingle:
			if len(topic) == 0 {
				return false
			}
		default:
			if len(topic) == 0 || topic[0] != pattern[0] {
				return false
			}
		}
		pattern = pattern[1:]
		topic = topic[1:]
	}
	return len(topic) == 0
}
