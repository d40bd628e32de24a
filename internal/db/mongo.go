package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arogya-intake/pkg"
)

// Collection names.
const (
	sessionsCollection = "sessions"
	messagesCollection = "messages"
	guidesCollection   = "health_guides"
	feedbackCollection = "feedback"
)

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri, pings the server and ensures the indexes exist.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &MongoStore{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "ts", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create message index: %w", err)
	}
	_, err = s.db.Collection(guidesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "ts", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create guide index: %w", err)
	}
	return nil
}

// Drop removes the database; used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type sessionDoc struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	Language          string    `bson:"language"`
	Stage             string    `bson:"current_stage"`
	Symptoms          []string  `bson:"symptoms"`
	Severity          string    `bson:"severity_level"`
	EmergencyDetected bool      `bson:"emergency_detected"`
	GuideGenerated    bool      `bson:"health_guide_generated"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// messageDoc keeps the nanosecond timestamp next to the BSON date, which
// only has millisecond precision, so that ordering stays stable.
type messageDoc struct {
	ID        string         `bson:"_id"`
	SessionID string         `bson:"session_id"`
	Sender    string         `bson:"sender"`
	Content   string         `bson:"content"`
	Language  string         `bson:"language"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	Timestamp time.Time      `bson:"timestamp"`
	TS        int64          `bson:"ts"`
}

type guideDoc struct {
	ID        string          `bson:"_id"`
	SessionID string          `bson:"session_id"`
	Guide     pkg.HealthGuide `bson:"guide"`
	TS        int64           `bson:"ts"`
}

type feedbackDoc struct {
	ID                     string    `bson:"_id"`
	SessionID              string    `bson:"session_id"`
	Rating                 int       `bson:"rating"`
	Comments               string    `bson:"comments"`
	HelpfulAspects         []string  `bson:"helpful_aspects"`
	ImprovementSuggestions string    `bson:"improvement_suggestions"`
	CreatedAt              time.Time `bson:"created_at"`
}

func (s *MongoStore) CreateSession(ctx context.Context, sess *pkg.Session) error {
	_, err := s.db.Collection(sessionsCollection).InsertOne(ctx, sessionDoc{
		ID:                sess.ID,
		UserID:            sess.UserID,
		Language:          string(sess.Language),
		Stage:             string(sess.Stage),
		Symptoms:          nonNil(sess.Symptoms),
		Severity:          string(sess.Severity),
		EmergencyDetected: sess.EmergencyDetected,
		GuideGenerated:    sess.GuideGenerated,
		CreatedAt:         sess.CreatedAt,
		UpdatedAt:         sess.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *MongoStore) GetSession(ctx context.Context, id string) (*pkg.Session, error) {
	var d sessionDoc
	err := s.db.Collection(sessionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &pkg.Session{
		ID:                d.ID,
		UserID:            d.UserID,
		Language:          pkg.Language(d.Language),
		Stage:             pkg.Stage(d.Stage),
		Symptoms:          d.Symptoms,
		Severity:          pkg.Severity(d.Severity),
		EmergencyDetected: d.EmergencyDetected,
		GuideGenerated:    d.GuideGenerated,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}, nil
}

func (s *MongoStore) UpdateSession(ctx context.Context, id string, u pkg.SessionUpdate) error {
	set := bson.M{}
	if u.Language != nil {
		set["language"] = string(*u.Language)
	}
	if u.Stage != nil {
		set["current_stage"] = string(*u.Stage)
	}
	if u.Symptoms != nil {
		set["symptoms"] = u.Symptoms
	}
	if u.Severity != nil {
		set["severity_level"] = string(*u.Severity)
	}
	if u.EmergencyDetected != nil {
		set["emergency_detected"] = *u.EmergencyDetected
	}
	if u.GuideGenerated != nil {
		set["health_guide_generated"] = *u.GuideGenerated
	}
	updated := u.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	set["updated_at"] = updated

	res, err := s.db.Collection(sessionsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertMessage(ctx context.Context, m *pkg.Message) error {
	_, err := s.db.Collection(messagesCollection).InsertOne(ctx, messageDoc{
		ID:        m.ID,
		SessionID: m.SessionID,
		Sender:    string(m.Role),
		Content:   m.Content,
		Language:  string(m.Language),
		Metadata:  m.Metadata,
		Timestamp: m.Timestamp,
		TS:        m.Timestamp.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *MongoStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	n, err := s.db.Collection(messagesCollection).CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) ListMessages(ctx context.Context, sessionID string) ([]pkg.Message, error) {
	cur, err := s.db.Collection(messagesCollection).Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "ts", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]pkg.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, pkg.Message{
			ID:        d.ID,
			SessionID: d.SessionID,
			Role:      pkg.Role(d.Sender),
			Content:   d.Content,
			Language:  pkg.Language(d.Language),
			Metadata:  d.Metadata,
			Timestamp: time.Unix(0, d.TS).UTC(),
		})
	}
	return out, nil
}

func (s *MongoStore) InsertGuide(ctx context.Context, g *pkg.HealthGuide) error {
	_, err := s.db.Collection(guidesCollection).InsertOne(ctx, guideDoc{
		ID:        g.ID,
		SessionID: g.SessionID,
		Guide:     *g,
		TS:        g.CreatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("insert guide: %w", err)
	}
	return nil
}

func (s *MongoStore) GetGuide(ctx context.Context, sessionID string) (*pkg.HealthGuide, error) {
	var d guideDoc
	err := s.db.Collection(guidesCollection).FindOne(ctx,
		bson.M{"session_id": sessionID},
		options.FindOne().SetSort(bson.D{{Key: "ts", Value: -1}}),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	d.Guide.CreatedAt = time.Unix(0, d.TS).UTC()
	return &d.Guide, nil
}

func (s *MongoStore) InsertFeedback(ctx context.Context, f *pkg.Feedback) error {
	_, err := s.db.Collection(feedbackCollection).InsertOne(ctx, feedbackDoc{
		ID:                     f.ID,
		SessionID:              f.SessionID,
		Rating:                 f.Rating,
		Comments:               f.Comments,
		HelpfulAspects:         nonNil(f.HelpfulAspects),
		ImprovementSuggestions: f.ImprovementSuggestions,
		CreatedAt:              f.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
