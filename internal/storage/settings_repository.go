package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camsettings-bot/internal/models"
)

// SettingsRepository persists camera settings records in the pro and user
// namespaces. Each namespace is a table keyed by the normalized name; the
// repository never invents keys, it stores what the caller derived through
// normalization.
type SettingsRepository struct {
	db *PostgresDB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *PostgresDB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `name, raw_name, team, raw_team, full_team, raw_full_team,
		shake, fov, height, angle, distance, stiffness, swivel, transition, ball_toggle, updated_at`

// FindProBySubstring returns pro-namespace records whose normalized name
// contains any of the fragments as a substring.
func (r *SettingsRepository) FindProBySubstring(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(fragments))
	args := make([]interface{}, len(fragments))
	for i, frag := range fragments {
		conditions[i] = fmt.Sprintf("name LIKE '%%' || $%d || '%%'", i+1)
		args[i] = escapeLike(frag)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM pro_players WHERE %s",
		settingsColumns,
		strings.Join(conditions, " OR "),
	)

	return r.queryRecords(ctx, query, args...)
}

// FindRedditByExactKey returns user-namespace records whose normalized name
// exactly matches one of the keys.
func (r *SettingsRepository) FindRedditByExactKey(ctx context.Context, keys []string) ([]*models.PlayerSettings, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM reddit_players WHERE name = ANY($1)", settingsColumns)
	return r.queryRecords(ctx, query, keys)
}

// FindTeams returns pro-namespace records whose normalized full team name
// contains a fragment, or whose normalized short team label equals one.
func (r *SettingsRepository) FindTeams(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(fragments))
	args := make([]interface{}, 0, len(fragments)*2)
	for i, frag := range fragments {
		conditions[i] = fmt.Sprintf("(full_team LIKE '%%' || $%d || '%%' OR team = $%d)", i*2+1, i*2+2)
		args = append(args, escapeLike(frag), frag)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM pro_players WHERE %s",
		settingsColumns,
		strings.Join(conditions, " OR "),
	)

	return r.queryRecords(ctx, query, args...)
}

// UpsertPro inserts or fully replaces a pro-namespace record. A conflicting
// key overwrites every field value, including team info; this is how the
// ingestion source refreshes the namespace wholesale.
func (r *SettingsRepository) UpsertPro(ctx context.Context, rec *models.PlayerSettings) error {
	return r.upsert(ctx, "pro_players", rec)
}

// UpsertReddit inserts or fully replaces a user-namespace record. The caller
// always supplies the complete merged record, never a partial patch.
func (r *SettingsRepository) UpsertReddit(ctx context.Context, rec *models.PlayerSettings) error {
	return r.upsert(ctx, "reddit_players", rec)
}

// DeleteReddit removes a user-namespace record by its normalized key.
// Deleting a key with no record is not an error.
func (r *SettingsRepository) DeleteReddit(ctx context.Context, key string) error {
	_, err := r.db.Pool().Exec(ctx, "DELETE FROM reddit_players WHERE name = $1", key)
	if err != nil {
		return fmt.Errorf("failed to delete reddit record: %w", err)
	}
	return nil
}

// CountPro returns the number of pro-namespace records
func (r *SettingsRepository) CountPro(ctx context.Context) (int64, error) {
	return r.count(ctx, "pro_players")
}

// CountReddit returns the number of user-namespace records
func (r *SettingsRepository) CountReddit(ctx context.Context) (int64, error) {
	return r.count(ctx, "reddit_players")
}

func (r *SettingsRepository) count(ctx context.Context, table string) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func (r *SettingsRepository) upsert(ctx context.Context, table string, rec *models.PlayerSettings) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, raw_name, team, raw_team, full_team, raw_full_team,
			shake, fov, height, angle, distance, stiffness, swivel, transition, ball_toggle, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (name) DO UPDATE SET
			raw_name = EXCLUDED.raw_name,
			team = EXCLUDED.team,
			raw_team = EXCLUDED.raw_team,
			full_team = EXCLUDED.full_team,
			raw_full_team = EXCLUDED.raw_full_team,
			shake = EXCLUDED.shake,
			fov = EXCLUDED.fov,
			height = EXCLUDED.height,
			angle = EXCLUDED.angle,
			distance = EXCLUDED.distance,
			stiffness = EXCLUDED.stiffness,
			swivel = EXCLUDED.swivel,
			transition = EXCLUDED.transition,
			ball_toggle = EXCLUDED.ball_toggle,
			updated_at = EXCLUDED.updated_at
	`, table)

	_, err := r.db.Pool().Exec(ctx, query,
		rec.NormalizedName,
		rec.RawName,
		rec.NormalizedTeam,
		rec.RawTeam,
		rec.NormalizedFullTeam,
		rec.RawFullTeam,
		rec.Shake,
		rec.FOV,
		rec.Height,
		rec.Angle,
		rec.Distance,
		rec.Stiffness,
		rec.Swivel,
		rec.Transition,
		rec.BallToggle,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters in a fragment so it matches
// literally. Normalized keys can legitimately contain "_", which LIKE would
// otherwise treat as a single-character wildcard.
func escapeLike(fragment string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(fragment)
}

func (r *SettingsRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.PlayerSettings, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayerSettings
	for rows.Next() {
		var rec models.PlayerSettings
		err := rows.Scan(
			&rec.NormalizedName,
			&rec.RawName,
			&rec.NormalizedTeam,
			&rec.RawTeam,
			&rec.NormalizedFullTeam,
			&rec.RawFullTeam,
			&rec.Shake,
			&rec.FOV,
			&rec.Height,
			&rec.Angle,
			&rec.Distance,
			&rec.Stiffness,
			&rec.Swivel,
			&rec.Transition,
			&rec.BallToggle,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settings record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings records: %w", err)
	}

	return records, nil
}
