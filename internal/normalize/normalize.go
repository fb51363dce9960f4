// Package normalize provides the canonical key normalization used for every
// lookup and stored identity in the settings store.
package normalize

import "strings"

// Key canonicalizes a free-text identifier to a lookup key: lowercase, with
// every character that is not an ASCII letter, digit, or underscore stripped.
// "Team Liquid" and "TEAM-liquid" normalize identically.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RedditKey derives the user-namespace identity for a reddit username.
// Format: lowercase "/u/<username>". The slash prefix keeps user identities
// disjoint from pro-namespace keys, which never contain a slash.
func RedditKey(username string) string {
	return "/u/" + Key(username)
}

// IsRedditIdentity reports whether a lookup identifier refers to a reddit
// user ("u/name" or "/u/name") rather than a pro-name fragment.
func IsRedditIdentity(identifier string) bool {
	lower := strings.ToLower(identifier)
	return strings.HasPrefix(lower, "/u/") || strings.HasPrefix(lower, "u/")
}

// RedditKeyFromIdentifier converts a "u/name" or "/u/name" lookup identifier
// to its normalized user-namespace key.
func RedditKeyFromIdentifier(identifier string) string {
	lower := strings.ToLower(identifier)
	lower = strings.TrimPrefix(lower, "/")
	lower = strings.TrimPrefix(lower, "u/")
	return RedditKey(lower)
}
