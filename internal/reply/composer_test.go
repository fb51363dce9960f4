package reply

import (
	"strings"
	"testing"

	"github.com/camsettings-bot/internal/models"
)

func proRecord(name, fullTeam string) *models.PlayerSettings {
	rec := models.Scaffold(name, "")
	rec.SetName(name)
	rec.SetTeam("", fullTeam)
	return rec
}

func TestComposeEmptyCollections(t *testing.T) {
	got := Compose(nil, nil)
	if !strings.HasPrefix(got, NoResults) {
		t.Errorf("Compose() = %q, want %q prefix", got, NoResults)
	}
	if !strings.HasSuffix(got, Signature) {
		t.Error("Compose() missing signature footer")
	}
	if strings.Contains(got, "Player's name") {
		t.Error("empty result should omit the table header")
	}
}

func TestComposeSingleRecord(t *testing.T) {
	rec := proRecord("Squishy", "NRG Esports")
	got := Compose([]*models.PlayerSettings{rec})

	lines := strings.Split(got, "\n")
	if len(lines) < 3 {
		t.Fatalf("too few lines: %q", got)
	}

	wantHeader := "Player's name|Player's team|Camera shake|FOV|Height|Angle|Distance|Stiffness|Swivel speed|Transition speed|Toggle ball camera  "
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}

	wantAlign := ":-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:  "
	if lines[1] != wantAlign {
		t.Errorf("alignment row = %q, want %q", lines[1], wantAlign)
	}

	wantRow := "Squishy|NRG Esports|no|90|100|-5|240|0|2.5|1|yes  "
	if lines[2] != wantRow {
		t.Errorf("row = %q, want %q", lines[2], wantRow)
	}

	if !strings.HasSuffix(got, Signature) {
		t.Error("missing signature footer")
	}
}

func TestComposeAbsentNumericsRenderEmpty(t *testing.T) {
	rec := &models.PlayerSettings{RawName: "Mystery", BallToggle: true}
	got := Compose([]*models.PlayerSettings{rec})

	lines := strings.Split(got, "\n")
	wantRow := "Mystery||no||||||||yes  "
	if lines[2] != wantRow {
		t.Errorf("row = %q, want %q", lines[2], wantRow)
	}
	if strings.Contains(got, "nil") || strings.Contains(got, "<nil>") {
		t.Error("absent fields must render as empty cells, not placeholders")
	}
}

func TestComposeMultipleCollectionsShareOneHeader(t *testing.T) {
	pro := []*models.PlayerSettings{proRecord("Shadow", "F3 Oxygen")}
	reddit := []*models.PlayerSettings{proRecord("/u/someuser", "")}

	got := Compose(pro, reddit)

	if strings.Count(got, "Player's name") != 1 {
		t.Error("collections must share a single header")
	}

	proIdx := strings.Index(got, "Shadow")
	redditIdx := strings.Index(got, "/u/someuser")
	if proIdx < 0 || redditIdx < 0 {
		t.Fatalf("missing rows in %q", got)
	}
	if proIdx > redditIdx {
		t.Error("pro rows must render before reddit rows")
	}
}

func TestComposeFloatsKeepPrecision(t *testing.T) {
	rec := proRecord("Tester", "")
	angle := -4.55
	rec.Angle = &angle

	got := Compose([]*models.PlayerSettings{rec})
	if !strings.Contains(got, "|-4.55|") {
		t.Errorf("angle cell missing in %q", got)
	}
}

func TestFixedRepliesCarrySignature(t *testing.T) {
	for name, text := range map[string]string{
		"help":      ComposeHelp(),
		"deleted":   ComposeDeleted(),
		"cantparse": ComposeCantParse(),
		"failure":   ComposeFailure(),
	} {
		if !strings.HasSuffix(text, Signature) {
			t.Errorf("%s reply missing signature footer", name)
		}
	}
}
