// Package mongo реализует хранилище записей поверх MongoDB.
// Каждая запись хранится в конверте: поля для выборок вынесены на верхний
// уровень, сама запись вложена целиком.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

const (
	collDisputes = "disputes"
	collReviews  = "reviews"
	collSessions = "mediation_sessions"
)

// Store реализует repository.RecordStore.
type Store struct {
	db       *mongo.Database
	disputes *mongo.Collection
	reviews  *mongo.Collection
	sessions *mongo.Collection
}

var _ repository.RecordStore = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		disputes: db.Collection(collDisputes),
		reviews:  db.Collection(collReviews),
		sessions: db.Collection(collSessions),
	}
}

// EnsureIndexes создаёт индексы для выборок по участникам и очереди модерации.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.disputes: {
			{Keys: bson.D{{Key: "initiator_id", Value: 1}}},
			{Keys: bson.D{{Key: "respondent_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		s.reviews: {
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
			{Keys: bson.D{{Key: "reviewer_id", Value: 1}}},
			{Keys: bson.D{{Key: "needs_attention", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		s.sessions: {
			{Keys: bson.D{{Key: "dispute_id", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("mongo: не удалось создать индексы %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Close отключает клиента.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

type disputeDoc struct {
	ID             string          `bson:"_id"`
	Status         string          `bson:"status"`
	InitiatorID    string          `bson:"initiator_id"`
	InitiatorRole  string          `bson:"initiator_role"`
	RespondentID   string          `bson:"respondent_id"`
	RespondentRole string          `bson:"respondent_role"`
	CreatedAt      time.Time       `bson:"created_at"`
	Dispute        *models.Dispute `bson:"dispute"`
}

func newDisputeDoc(d *models.Dispute) disputeDoc {
	return disputeDoc{
		ID:             d.ID.String(),
		Status:         string(d.Status),
		InitiatorID:    d.Initiator.ID,
		InitiatorRole:  string(d.Initiator.Role),
		RespondentID:   d.Respondent.ID,
		RespondentRole: string(d.Respondent.Role),
		CreatedAt:      d.CreatedAt,
		Dispute:        d,
	}
}

type reviewDoc struct {
	ID             string         `bson:"_id"`
	TargetType     string         `bson:"target_type"`
	TargetID       string         `bson:"target_id"`
	ReviewerID     string         `bson:"reviewer_id"`
	Status         string         `bson:"status"`
	NeedsAttention bool           `bson:"needs_attention"`
	CreatedAt      time.Time      `bson:"created_at"`
	Review         *models.Review `bson:"review"`
}

func newReviewDoc(r *models.Review) reviewDoc {
	return reviewDoc{
		ID:             r.ID.String(),
		TargetType:     string(r.TargetType),
		TargetID:       r.TargetID,
		ReviewerID:     r.ReviewerID,
		Status:         string(r.Status),
		NeedsAttention: r.NeedsAttention(),
		CreatedAt:      r.CreatedAt,
		Review:         r,
	}
}

type sessionDoc struct {
	ID        string                   `bson:"_id"`
	DisputeID string                   `bson:"dispute_id"`
	Status    string                   `bson:"status"`
	CreatedAt time.Time                `bson:"created_at"`
	Session   *models.MediationSession `bson:"session"`
}

func newSessionDoc(m *models.MediationSession) sessionDoc {
	return sessionDoc{
		ID:        m.ID.String(),
		DisputeID: m.DisputeID.String(),
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		Session:   m,
	}
}

func disputeQuery(f repository.DisputeFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.ParticipantID == "" && f.Role == "" {
		return q
	}
	side := func(prefix string) bson.M {
		m := bson.M{}
		if f.ParticipantID != "" {
			m[prefix+"_id"] = f.ParticipantID
		}
		if f.Role != "" {
			m[prefix+"_role"] = string(f.Role)
		}
		return m
	}
	q["$or"] = bson.A{side("initiator"), side("respondent")}
	return q
}

func reviewQuery(f repository.ReviewFilter) bson.M {
	q := bson.M{}
	if f.TargetType != "" {
		q["target_type"] = string(f.TargetType)
	}
	if f.TargetID != "" {
		q["target_id"] = f.TargetID
	}
	if f.ReviewerID != "" {
		q["reviewer_id"] = f.ReviewerID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.NeedsAttention {
		q["needs_attention"] = true
	}
	return q
}

func sessionQuery(f repository.SessionFilter) bson.M {
	q := bson.M{}
	if f.DisputeID != uuid.Nil {
		q["dispute_id"] = f.DisputeID.String()
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	return q
}

var byCreation = options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("mongo: insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, id uuid.UUID, dest any, notFound error) error {
	err := coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(dest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound
		}
		return fmt.Errorf("mongo: find in %s: %w", coll.Name(), err)
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, id string, doc any, notFound error) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("mongo: replace in %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, query bson.M) ([]T, error) {
	cursor, err := coll.Find(ctx, query, byCreation)
	if err != nil {
		return nil, fmt.Errorf("mongo: find in %s: %w", coll.Name(), err)
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}

func (s *Store) CreateDispute(ctx context.Context, d *models.Dispute) error {
	return insert(ctx, s.disputes, newDisputeDoc(d))
}

func (s *Store) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var doc disputeDoc
	if err := findOne(ctx, s.disputes, id, &doc, repository.ErrDisputeNotFound); err != nil {
		return nil, err
	}
	return doc.Dispute, nil
}

func (s *Store) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	return replace(ctx, s.disputes, d.ID.String(), newDisputeDoc(d), repository.ErrDisputeNotFound)
}

func (s *Store) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	docs, err := findAll[disputeDoc](ctx, s.disputes, disputeQuery(filter))
	if err != nil {
		return nil, err
	}
	out := make([]models.Dispute, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *doc.Dispute)
	}
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return insert(ctx, s.reviews, newReviewDoc(r))
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var doc reviewDoc
	if err := findOne(ctx, s.reviews, id, &doc, repository.ErrReviewNotFound); err != nil {
		return nil, err
	}
	return doc.Review, nil
}

func (s *Store) UpdateReview(ctx context.Context, r *models.Review) error {
	return replace(ctx, s.reviews, r.ID.String(), newReviewDoc(r), repository.ErrReviewNotFound)
}

func (s *Store) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, error) {
	docs, err := findAll[reviewDoc](ctx, s.reviews, reviewQuery(filter))
	if err != nil {
		return nil, err
	}
	out := make([]models.Review, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *doc.Review)
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, m *models.MediationSession) error {
	return insert(ctx, s.sessions, newSessionDoc(m))
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.MediationSession, error) {
	var doc sessionDoc
	if err := findOne(ctx, s.sessions, id, &doc, repository.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return doc.Session, nil
}

func (s *Store) UpdateSession(ctx context.Context, m *models.MediationSession) error {
	return replace(ctx, s.sessions, m.ID.String(), newSessionDoc(m), repository.ErrSessionNotFound)
}

func (s *Store) ListSessions(ctx context.Context, filter repository.SessionFilter) ([]models.MediationSession, error) {
	docs, err := findAll[sessionDoc](ctx, s.sessions, sessionQuery(filter))
	if err != nil {
		return nil, err
	}
	out := make([]models.MediationSession, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *doc.Session)
	}
	return out, nil
}
