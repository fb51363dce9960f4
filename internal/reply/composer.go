// Package reply renders settings record collections into markdown replies.
package reply

import (
	"strconv"
	"strings"

	"github.com/camsettings-bot/internal/models"
)

// NoResults is the reply body used when every supplied collection is empty.
const NoResults = "no players found"

// Signature is the attribution footer appended to every reply.
const Signature = "I am a bot created by /u/scooty14, " +
	"[DATA SOURCE](https://liquipedia.net/rocketleague/List_of_player_camera_settings)" +
	" ^| ^send ^me ^a ^private ^message ^containing ^\"help\" ^for ^usage"

// HelpText is the body of the help reply.
const HelpText = "**Looking up settings**  \n" +
	"`camera <player>` (aliases: player, cam, settings, p, c) looks up a pro player by name fragment.  \n" +
	"`cameras <p1> <p2> ...` (aliases: players, cams, ps, cs) looks up up to 10 players at once; `/u/<name>` entries look up reddit users.  \n" +
	"`team <team>` (aliases: teamcam, teamcamera, tc, t) looks up a team by abbreviation or full-name fragment, `teams ...` for up to 10.  \n\n" +
	"**Storing your own settings** (private message only)  \n" +
	"Send me one `<field> <value>` pair per line, e.g. `fov 110`. Fields: shake, fov, height, angle, distance, stiffness, swivel, transition, toggle. " +
	"shake and toggle take yes/no.  \n" +
	"`delete` removes your stored settings."

// CantParse is the body of the generic parse-failure reply.
const CantParse = "sorry, I could not understand that request"

// SomethingWentWrong is the body of the generic failure reply.
const SomethingWentWrong = "something went wrong, please try again later"

// columnLabels are the fixed human-readable header labels, in the fixed
// column order shared by every table reply.
var columnLabels = []string{
	"Player's name",
	"Player's team",
	"Camera shake",
	"FOV",
	"Height",
	"Angle",
	"Distance",
	"Stiffness",
	"Swivel speed",
	"Transition speed",
	"Toggle ball camera",
}

// Compose renders one or more record collections as a single markdown table
// under one shared header, preserving collection order and each collection's
// internal order. With no records at all it renders the no-results message.
// The signature footer is always appended.
func Compose(collections ...[]*models.PlayerSettings) string {
	total := 0
	for _, c := range collections {
		total += len(c)
	}
	if total == 0 {
		return withSignature(NoResults)
	}

	var b strings.Builder
	b.WriteString(strings.Join(columnLabels, "|"))
	b.WriteString("  \n")

	separators := make([]string, len(columnLabels))
	for i := range separators {
		separators[i] = ":-:"
	}
	b.WriteString(strings.Join(separators, "|"))
	b.WriteString("  \n")

	for _, c := range collections {
		for _, rec := range c {
			b.WriteString(row(rec))
			b.WriteString("  \n")
		}
	}

	return withSignature(b.String())
}

// ComposeHelp renders the help reply.
func ComposeHelp() string {
	return withSignature(HelpText)
}

// ComposeDeleted renders the delete confirmation reply.
func ComposeDeleted() string {
	return withSignature("your stored settings have been deleted")
}

// ComposeCantParse renders the generic parse-failure reply.
func ComposeCantParse() string {
	return withSignature(CantParse)
}

// ComposeFailure renders the generic failure reply. Failure replies carry the
// signature footer like every other reply.
func ComposeFailure() string {
	return withSignature(SomethingWentWrong)
}

func withSignature(body string) string {
	return strings.TrimRight(body, "\n") + "\n\n" + Signature
}

func row(rec *models.PlayerSettings) string {
	cells := []string{
		rec.RawName,
		rec.RawFullTeam,
		yesNo(rec.Shake),
		intCell(rec.FOV),
		intCell(rec.Height),
		floatCell(rec.Angle),
		intCell(rec.Distance),
		floatCell(rec.Stiffness),
		floatCell(rec.Swivel),
		floatCell(rec.Transition),
		yesNo(rec.BallToggle),
	}
	return strings.Join(cells, "|")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Absent numeric fields render as an empty cell, never a placeholder word.

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
