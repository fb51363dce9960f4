// Package updater merges free-text settings edits onto a settings record.
//
// The merge itself is pure: ParseEdits turns candidate lines into typed
// edits, Apply folds them onto a copy of an existing record. Persistence is
// the caller's explicit step.
package updater

import (
	"strconv"
	"strings"

	"github.com/camsettings-bot/internal/models"
)

// Field identifies one editable settings field.
type Field string

const (
	FieldShake      Field = "shake"
	FieldFOV        Field = "fov"
	FieldHeight     Field = "height"
	FieldAngle      Field = "angle"
	FieldDistance   Field = "distance"
	FieldStiffness  Field = "stiffness"
	FieldSwivel     Field = "swivel"
	FieldTransition Field = "transition"
	FieldToggle     Field = "toggle"
)

// fieldPrecedence is the fixed order keywords are checked in. An ambiguous
// first token containing two field names only ever sets the first one here.
var fieldPrecedence = []Field{
	FieldShake,
	FieldFOV,
	FieldHeight,
	FieldAngle,
	FieldDistance,
	FieldStiffness,
	FieldSwivel,
	FieldTransition,
	FieldToggle,
}

// FieldEdit is one candidate assignment extracted from an input line.
type FieldEdit struct {
	Field Field
	Value string
}

// ParseEdits extracts typed edits from the non-empty lines of a settings
// block. Each line splits on whitespace into a keyword token and a value
// token; lines with fewer than two tokens are ignored. The keyword matches a
// field by substring containment ("myfov 110" sets fov), resolved by the
// fixed precedence order.
func ParseEdits(lines []string) []FieldEdit {
	var edits []FieldEdit
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}
		keyword := strings.ToLower(tokens[0])
		for _, field := range fieldPrecedence {
			if strings.Contains(keyword, string(field)) {
				edits = append(edits, FieldEdit{Field: field, Value: tokens[1]})
				break
			}
		}
	}
	return edits
}

// Apply folds edits onto a copy of existing and returns the merged record
// together with the edits that were rejected. Boolean fields accept only the
// literal tokens "yes" and "no"; a numeric edit whose value token does not
// parse is rejected, leaving the previous (or default) value in place rather
// than persisting a corrupt one.
func Apply(existing *models.PlayerSettings, edits []FieldEdit) (*models.PlayerSettings, []FieldEdit) {
	merged := existing.Clone()
	var rejected []FieldEdit

	for _, edit := range edits {
		if !applyEdit(merged, edit) {
			rejected = append(rejected, edit)
		}
	}

	return merged, rejected
}

func applyEdit(rec *models.PlayerSettings, edit FieldEdit) bool {
	switch edit.Field {
	case FieldShake:
		v, ok := parseYesNo(edit.Value)
		if !ok {
			return false
		}
		rec.Shake = v
	case FieldToggle:
		v, ok := parseYesNo(edit.Value)
		if !ok {
			return false
		}
		rec.BallToggle = v
	case FieldFOV:
		return applyInt(&rec.FOV, edit.Value)
	case FieldHeight:
		return applyInt(&rec.Height, edit.Value)
	case FieldDistance:
		return applyInt(&rec.Distance, edit.Value)
	case FieldAngle:
		return applyFloat(&rec.Angle, edit.Value)
	case FieldStiffness:
		return applyFloat(&rec.Stiffness, edit.Value)
	case FieldSwivel:
		return applyFloat(&rec.Swivel, edit.Value)
	case FieldTransition:
		return applyFloat(&rec.Transition, edit.Value)
	default:
		return false
	}
	return true
}

// parseYesNo accepts exactly the literal tokens "yes" and "no"; any other
// spelling, including capitalized variants, is rejected.
func parseYesNo(token string) (value, ok bool) {
	switch token {
	case "yes":
		return true, true
	case "no":
		return false, true
	default:
		return false, false
	}
}

func applyInt(target **int, token string) bool {
	v, err := strconv.Atoi(token)
	if err != nil {
		return false
	}
	*target = &v
	return true
}

func applyFloat(target **float64, token string) bool {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return false
	}
	*target = &v
	return true
}
