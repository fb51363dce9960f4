// Package models provides data models for the camera settings bot.
package models

import (
	"time"

	"github.com/camsettings-bot/internal/normalize"
)

// PlayerSettings represents one camera settings record. The same shape is
// shared by the pro namespace (one row per known professional player) and the
// user namespace (one row per reddit user, keyed by "/u/<name>").
//
// Numeric fields are pointers: nil means the value is explicitly absent
// (e.g. a source row the scraper could not parse), never a corrupt string.
type PlayerSettings struct {
	RawName            string    `json:"rawName" db:"raw_name"`
	NormalizedName     string    `json:"normalizedName" db:"name"`
	RawTeam            string    `json:"rawTeam" db:"raw_team"`
	NormalizedTeam     string    `json:"normalizedTeam" db:"team"`
	RawFullTeam        string    `json:"rawFullTeam" db:"raw_full_team"`
	NormalizedFullTeam string    `json:"normalizedFullTeam" db:"full_team"`
	Shake              bool      `json:"shake" db:"shake"`
	FOV                *int      `json:"fov,omitempty" db:"fov"`
	Height             *int      `json:"height,omitempty" db:"height"`
	Angle              *float64  `json:"angle,omitempty" db:"angle"`
	Distance           *int      `json:"distance,omitempty" db:"distance"`
	Stiffness          *float64  `json:"stiffness,omitempty" db:"stiffness"`
	Swivel             *float64  `json:"swivel,omitempty" db:"swivel"`
	Transition         *float64  `json:"transition,omitempty" db:"transition"`
	BallToggle         bool      `json:"ballToggle" db:"ball_toggle"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// SetTeam sets the raw team labels and derives the normalized counterparts.
// Normalized team keys are never hand-set; they always come from the raw
// value through the same normalization used for lookups.
func (p *PlayerSettings) SetTeam(rawTeam, rawFullTeam string) {
	p.RawTeam = rawTeam
	p.NormalizedTeam = normalize.Key(rawTeam)
	p.RawFullTeam = rawFullTeam
	p.NormalizedFullTeam = normalize.Key(rawFullTeam)
}

// SetName sets the display name and derives the normalized lookup key.
func (p *PlayerSettings) SetName(rawName string) {
	p.RawName = rawName
	p.NormalizedName = normalize.Key(rawName)
}

// Documented default profile used when a user updates settings without an
// existing record.
const (
	DefaultFOV        = 90
	DefaultHeight     = 100
	DefaultAngle      = -5.0
	DefaultDistance   = 240
	DefaultStiffness  = 0.0
	DefaultSwivel     = 2.5
	DefaultTransition = 1.0
)

// Scaffold synthesizes a record with the documented default profile for a
// reddit identity that has no stored record yet. rawName is the display form
// ("/u/SomeUser"), key the normalized user-namespace identity.
func Scaffold(rawName, key string) *PlayerSettings {
	fov := DefaultFOV
	height := DefaultHeight
	angle := DefaultAngle
	distance := DefaultDistance
	stiffness := DefaultStiffness
	swivel := DefaultSwivel
	transition := DefaultTransition

	return &PlayerSettings{
		RawName:        rawName,
		NormalizedName: key,
		Shake:          false,
		FOV:            &fov,
		Height:         &height,
		Angle:          &angle,
		Distance:       &distance,
		Stiffness:      &stiffness,
		Swivel:         &swivel,
		Transition:     &transition,
		BallToggle:     true,
	}
}

// Clone returns a deep copy of the record. The updater merges onto a copy so
// the stored value handed out by a repository is never mutated in place.
func (p *PlayerSettings) Clone() *PlayerSettings {
	c := *p
	c.FOV = cloneInt(p.FOV)
	c.Height = cloneInt(p.Height)
	c.Angle = cloneFloat(p.Angle)
	c.Distance = cloneInt(p.Distance)
	c.Stiffness = cloneFloat(p.Stiffness)
	c.Swivel = cloneFloat(p.Swivel)
	c.Transition = cloneFloat(p.Transition)
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
