package command

import (
	"reflect"
	"strings"
	"testing"

	"github.com/camsettings-bot/internal/types"
)

func TestParsePlayerLookup(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantPro    []string
		wantReddit []string
	}{
		{
			name:    "singular camera",
			body:    "!camera Squishy",
			wantPro: []string{"squishy"},
		},
		{
			name:    "singular short alias",
			body:    "c shadow",
			wantPro: []string{"shadow"},
		},
		{
			name:       "singular reddit identity",
			body:       "player /u/SomeUser",
			wantReddit: []string{"/u/someuser"},
		},
		{
			name:       "identity without leading slash",
			body:       "cam u/SomeUser",
			wantReddit: []string{"/u/someuser"},
		},
		{
			name:       "mixed plural with dash sigil",
			body:       "-players shadow /u/someuser",
			wantPro:    []string{"shadow"},
			wantReddit: []string{"/u/someuser"},
		},
		{
			name:    "plural normalizes fragments",
			body:    "cameras Squishy-Muffinz GarrettG",
			wantPro: []string{"squishymuffinz", "garrettg"},
		},
		{
			name:    "only first line is a command",
			body:    "settings shadow\nsecond line ignored",
			wantPro: []string{"shadow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.body, types.ChannelComment)
			if q.Kind != KindPlayerLookup {
				t.Fatalf("Parse(%q).Kind = %v, want %v", tt.body, q.Kind, KindPlayerLookup)
			}
			if !reflect.DeepEqual(q.ProFragments, tt.wantPro) {
				t.Errorf("ProFragments = %v, want %v", q.ProFragments, tt.wantPro)
			}
			if !reflect.DeepEqual(q.RedditKeys, tt.wantReddit) {
				t.Errorf("RedditKeys = %v, want %v", q.RedditKeys, tt.wantReddit)
			}
		})
	}
}

func TestParseTeamLookup(t *testing.T) {
	q := Parse("!team Team-Liquid", types.ChannelComment)
	if q.Kind != KindTeamLookup {
		t.Fatalf("Kind = %v, want %v", q.Kind, KindTeamLookup)
	}
	if !reflect.DeepEqual(q.TeamFragments, []string{"teamliquid"}) {
		t.Errorf("TeamFragments = %v", q.TeamFragments)
	}

	q = Parse("teams nrg f3 liquid", types.ChannelComment)
	if q.Kind != KindTeamLookup {
		t.Fatalf("Kind = %v, want %v", q.Kind, KindTeamLookup)
	}
	if !reflect.DeepEqual(q.TeamFragments, []string{"nrg", "f3", "liquid"}) {
		t.Errorf("TeamFragments = %v", q.TeamFragments)
	}
}

func TestParsePluralCapacityBound(t *testing.T) {
	// 11 identifiers exceed the 10-identifier bound: the whole command is a
	// parse miss, not a truncation.
	args := make([]string, 11)
	for i := range args {
		args[i] = "frag"
	}
	body := "players " + strings.Join(args, " ")

	q := Parse(body, types.ChannelComment)
	if q.Kind != KindUnrecognized {
		t.Errorf("Kind = %v, want %v", q.Kind, KindUnrecognized)
	}

	// Exactly 10 still matches.
	body = "players " + strings.Join(args[:10], " ")
	q = Parse(body, types.ChannelComment)
	if q.Kind != KindPlayerLookup {
		t.Errorf("Kind = %v, want %v", q.Kind, KindPlayerLookup)
	}
	if len(q.ProFragments) != 10 {
		t.Errorf("len(ProFragments) = %d, want 10", len(q.ProFragments))
	}
}

func TestParseSingularRejectsMultipleArgs(t *testing.T) {
	// "camera a b" does not match the singular pattern; on a comment it ends
	// up unrecognized rather than truncated to one identifier.
	q := Parse("camera shadow squishy", types.ChannelComment)
	if q.Kind != KindUnrecognized {
		t.Errorf("Kind = %v, want %v", q.Kind, KindUnrecognized)
	}
}

func TestParseDeleteAndHelp(t *testing.T) {
	tests := []struct {
		body    string
		channel types.Channel
		want    Kind
	}{
		{"delete", types.ChannelMessage, KindDelete},
		{"DELETE my settings", types.ChannelMessage, KindDelete},
		{"help", types.ChannelMessage, KindHelp},
		{"Help me", types.ChannelMessage, KindHelp},
		// Comments never reach delete/help handling.
		{"delete", types.ChannelComment, KindUnrecognized},
		{"help", types.ChannelComment, KindUnrecognized},
	}

	for _, tt := range tests {
		q := Parse(tt.body, tt.channel)
		if q.Kind != tt.want {
			t.Errorf("Parse(%q, %v).Kind = %v, want %v", tt.body, tt.channel, q.Kind, tt.want)
		}
	}
}

func TestParsePrivateMessageFallsThroughToUpdate(t *testing.T) {
	body := "fov 110\nheight 90\n\ndistance 270"
	q := Parse(body, types.ChannelMessage)
	if q.Kind != KindSettingsUpdate {
		t.Fatalf("Kind = %v, want %v", q.Kind, KindSettingsUpdate)
	}
	want := []string{"fov 110", "height 90", "distance 270"}
	if !reflect.DeepEqual(q.Lines, want) {
		t.Errorf("Lines = %v, want %v", q.Lines, want)
	}
}

func TestParseCommentNeverBecomesUpdate(t *testing.T) {
	q := Parse("fov 110", types.ChannelComment)
	if q.Kind != KindUnrecognized {
		t.Errorf("Kind = %v, want %v", q.Kind, KindUnrecognized)
	}
}

func TestParsePlayerBeforeTeamPrecedence(t *testing.T) {
	// "settings" is a player keyword even though teams also take fragments.
	q := Parse("settings liquid", types.ChannelComment)
	if q.Kind != KindPlayerLookup {
		t.Errorf("Kind = %v, want %v", q.Kind, KindPlayerLookup)
	}
}

func TestMentionsBot(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"hey /u/camsettingsbot what is this", true},
		{"hey u/CamSettingsBot what is this", true},
		{"u/camsettingsbot at line start", true},
		{"ends with /u/camsettingsbot", true},
		{"hey camsettingsbot", false},
		{"no mention at all", false},
		// The mention must sit on word boundaries.
		{"fu/camsettingsbot is not a mention", false},
		{"hey u/camsettingsbot2 is someone else", false},
		{"hey u/camsettingsbot_alt is someone else", false},
		{"(u/camsettingsbot) in parentheses", true},
	}

	for _, tt := range tests {
		if got := MentionsBot(tt.body, "camsettingsbot"); got != tt.want {
			t.Errorf("MentionsBot(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
