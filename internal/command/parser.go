// Package command classifies inbound message bodies into typed queries.
//
// Classification is data-driven: an ordered table of (keyword set, arity
// bounds, constructor) entries is evaluated in fixed precedence. Lookup
// patterns are tried singular-then-plural, player category before team
// category; delete and help apply to private messages only; a private message
// matching nothing else becomes a settings update candidate. A public comment
// never falls through to a settings update.
package command

import (
	"strings"

	"github.com/camsettings-bot/internal/normalize"
	"github.com/camsettings-bot/internal/types"
)

// Kind identifies the query variant a message was classified into.
type Kind string

const (
	// KindPlayerLookup requests settings for one or more players or users
	KindPlayerLookup Kind = "player_lookup"
	// KindTeamLookup requests settings for one or more teams
	KindTeamLookup Kind = "team_lookup"
	// KindDelete requests removal of the sender's stored record
	KindDelete Kind = "delete"
	// KindHelp requests the usage text
	KindHelp Kind = "help"
	// KindSettingsUpdate carries candidate field-assignment lines
	KindSettingsUpdate Kind = "settings_update"
	// KindUnrecognized means no pattern matched
	KindUnrecognized Kind = "unrecognized"
)

// Query is the typed result of classifying one message body.
type Query struct {
	Kind Kind

	// ProFragments holds normalized pro-name fragments of a player lookup.
	ProFragments []string
	// RedditKeys holds normalized "/u/<name>" identities of a player lookup.
	RedditKeys []string
	// TeamFragments holds normalized team fragments of a team lookup.
	TeamFragments []string
	// Lines holds the raw body lines of a settings update candidate.
	Lines []string
}

// MaxPluralIdentifiers bounds the identifier count of plural lookup commands.
// More identifiers than this is a parse miss, not a truncation.
const MaxPluralIdentifiers = 10

// pattern is one row of the classification table.
type pattern struct {
	keywords map[string]bool
	minArgs  int
	maxArgs  int
	build    func(args []string) Query
}

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// lookupPatterns is evaluated in order: player singular, player plural,
// team singular, team plural.
var lookupPatterns = []pattern{
	{
		keywords: keywordSet("camera", "player", "cam", "settings", "p", "c"),
		minArgs:  1,
		maxArgs:  1,
		build:    buildPlayerLookup,
	},
	{
		keywords: keywordSet("cameras", "players", "cams", "ps", "cs"),
		minArgs:  1,
		maxArgs:  MaxPluralIdentifiers,
		build:    buildPlayerLookup,
	},
	{
		keywords: keywordSet("team", "teamcam", "teamcamera", "tc", "t"),
		minArgs:  1,
		maxArgs:  1,
		build:    buildTeamLookup,
	},
	{
		keywords: keywordSet("teams", "teamcams", "teamcameras", "tcs", "ts"),
		minArgs:  1,
		maxArgs:  MaxPluralIdentifiers,
		build:    buildTeamLookup,
	},
}

func buildPlayerLookup(args []string) Query {
	q := Query{Kind: KindPlayerLookup}
	for _, arg := range args {
		if normalize.IsRedditIdentity(arg) {
			q.RedditKeys = append(q.RedditKeys, normalize.RedditKeyFromIdentifier(arg))
		} else {
			q.ProFragments = append(q.ProFragments, normalize.Key(arg))
		}
	}
	return q
}

func buildTeamLookup(args []string) Query {
	q := Query{Kind: KindTeamLookup}
	for _, arg := range args {
		q.TeamFragments = append(q.TeamFragments, normalize.Key(arg))
	}
	return q
}

// Parse classifies one message body. The channel decides which patterns are
// reachable: delete, help, and the settings-update fallback exist only for
// private messages.
func Parse(body string, channel types.Channel) Query {
	fields := strings.Fields(firstLine(body))
	if len(fields) == 0 {
		return fallback(body, channel)
	}

	keyword := strings.ToLower(stripSigil(fields[0]))
	args := fields[1:]

	for _, p := range lookupPatterns {
		if !p.keywords[keyword] {
			continue
		}
		if len(args) < p.minArgs || len(args) > p.maxArgs {
			// Arity out of bounds is a capacity miss for this pattern;
			// later patterns still get a chance.
			continue
		}
		return p.build(args)
	}

	if channel == types.ChannelMessage {
		switch keyword {
		case "delete":
			return Query{Kind: KindDelete}
		case "help":
			return Query{Kind: KindHelp}
		}
	}

	return fallback(body, channel)
}

// fallback routes an unmatched body: private messages become settings update
// candidates, comments stay unrecognized.
func fallback(body string, channel types.Channel) Query {
	if channel == types.ChannelMessage {
		return Query{Kind: KindSettingsUpdate, Lines: bodyLines(body)}
	}
	return Query{Kind: KindUnrecognized}
}

// stripSigil removes an optional leading command sigil ("!" or "-").
func stripSigil(token string) string {
	if len(token) > 1 && (token[0] == '!' || token[0] == '-') {
		return token[1:]
	}
	return token
}

func firstLine(body string) string {
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		return body[:i]
	}
	return body
}

func bodyLines(body string) []string {
	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// MentionsBot reports whether a body text mentions the bot's own identity,
// with or without the leading slash on the "u/" prefix. Unrecognized
// comments are answered only when addressed this way. The mention must sit
// on word boundaries: "fu/name" is not a mention, and neither is a longer
// username that merely starts with the bot's.
func MentionsBot(body, botUsername string) bool {
	if botUsername == "" {
		return false
	}
	lower := strings.ToLower(body)
	target := "u/" + strings.ToLower(botUsername)

	for i := 0; ; {
		j := strings.Index(lower[i:], target)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(target)

		// The "/" of a "/u/" prefix is itself a boundary.
		boundedBefore := start == 0 || !isWordByte(lower[start-1])
		boundedAfter := end == len(lower) || !isWordByte(lower[end])
		if boundedBefore && boundedAfter {
			return true
		}
		i = end
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
