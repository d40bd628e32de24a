package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"arogya-intake/pkg"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string
	// rebind rewrites $n placeholders into the backend's syntax.
	rebind func(query string) string
	// timeArg converts a timestamp into a bindable value.
	timeArg func(t time.Time) any
}

var placeholderRE = regexp.MustCompile(`\$\d+`)

// sqliteTimeLayout is fixed width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

var postgresDialect = dialect{
	name:    "postgres",
	rebind:  func(q string) string { return q },
	timeArg: func(t time.Time) any { return t.UTC() },
}

var sqliteDialect = dialect{
	name:    "sqlite",
	rebind:  func(q string) string { return placeholderRE.ReplaceAllString(q, "?") },
	timeArg: func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

// SQLStore implements Store on database/sql for Postgres and SQLite.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// DB exposes the underlying pool, e.g. for the Postgres notifier.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect names the SQL backend.
func (s *SQLStore) Dialect() string { return s.d.name }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.d.rebind(query), args...)
}

// dbTime scans the timestamp representations the drivers hand back.
type dbTime struct{ t *time.Time }

func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v.UTC()
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (d dbTime) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse time %q: %w", s, err)
	}
	*d.t = t.UTC()
	return nil
}

// jsonText scans a JSON encoded column into v.
type jsonText struct{ v any }

func (j jsonText) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported json value %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, j.v)
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLStore) CreateSession(ctx context.Context, sess *pkg.Session) error {
	symptoms, err := toJSON(nonNil(sess.Symptoms))
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO sessions (id, user_id, language, current_stage, symptoms, severity_level,
                               emergency_detected, health_guide_generated, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sess.ID, sess.UserID, string(sess.Language), string(sess.Stage), symptoms, string(sess.Severity),
		sess.EmergencyDetected, sess.GuideGenerated, s.d.timeArg(sess.CreatedAt), s.d.timeArg(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (*pkg.Session, error) {
	var (
		sess                  pkg.Session
		lang, stage, severity string
	)
	err := s.queryRow(ctx,
		`SELECT id, user_id, language, current_stage, symptoms, severity_level,
                emergency_detected, health_guide_generated, created_at, updated_at
         FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &lang, &stage, jsonText{&sess.Symptoms}, &severity,
		&sess.EmergencyDetected, &sess.GuideGenerated, dbTime{&sess.CreatedAt}, dbTime{&sess.UpdatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.Language = pkg.Language(lang)
	sess.Stage = pkg.Stage(stage)
	sess.Severity = pkg.Severity(severity)
	return &sess, nil
}

func (s *SQLStore) UpdateSession(ctx context.Context, id string, u pkg.SessionUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Language != nil {
		add("language", string(*u.Language))
	}
	if u.Stage != nil {
		add("current_stage", string(*u.Stage))
	}
	if u.Symptoms != nil {
		symptoms, err := toJSON(u.Symptoms)
		if err != nil {
			return err
		}
		add("symptoms", symptoms)
	}
	if u.Severity != nil {
		add("severity_level", string(*u.Severity))
	}
	if u.EmergencyDetected != nil {
		add("emergency_detected", *u.EmergencyDetected)
	}
	if u.GuideGenerated != nil {
		add("health_guide_generated", *u.GuideGenerated)
	}
	updated := u.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	add("updated_at", s.d.timeArg(updated))

	args = append(args, id)
	q := fmt.Sprintf("UPDATE sessions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) InsertMessage(ctx context.Context, m *pkg.Message) error {
	meta, err := toJSON(m.Metadata)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO messages (id, session_id, sender, content, language, metadata, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SessionID, string(m.Role), m.Content, string(m.Language), meta, s.d.timeArg(m.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *SQLStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM messages WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListMessages(ctx context.Context, sessionID string) ([]pkg.Message, error) {
	rows, err := s.query(ctx,
		`SELECT id, session_id, sender, content, language, metadata, created_at
         FROM messages
         WHERE session_id = $1
         ORDER BY created_at ASC, seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var out []pkg.Message
	for rows.Next() {
		var (
			m          pkg.Message
			role, lang string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &lang, jsonText{&m.Metadata}, dbTime{&m.Timestamp}); err != nil {
			return nil, err
		}
		m.Role = pkg.Role(role)
		m.Language = pkg.Language(lang)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertGuide(ctx context.Context, g *pkg.HealthGuide) error {
	body, err := toJSON(g)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO health_guides (id, session_id, language, severity_level, content, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.SessionID, string(g.Language), string(g.Severity), body, s.d.timeArg(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert guide: %w", err)
	}
	return nil
}

func (s *SQLStore) GetGuide(ctx context.Context, sessionID string) (*pkg.HealthGuide, error) {
	var g pkg.HealthGuide
	err := s.queryRow(ctx,
		`SELECT content FROM health_guides
         WHERE session_id = $1
         ORDER BY created_at DESC, seq DESC
         LIMIT 1`, sessionID,
	).Scan(jsonText{&g})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	return &g, nil
}

func (s *SQLStore) InsertFeedback(ctx context.Context, f *pkg.Feedback) error {
	aspects, err := toJSON(nonNil(f.HelpfulAspects))
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO feedback (id, session_id, rating, comments, helpful_aspects, improvement_suggestions, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.SessionID, f.Rating, f.Comments, aspects, f.ImprovementSuggestions, s.d.timeArg(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
