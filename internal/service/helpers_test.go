package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/memory"
	"github.com/ignatzorin/freelance-arbitration/internal/scoring"
)

func init() {
	logger.Discard()
}

var (
	client     = Actor{ID: "client-1", Role: RoleClient}
	freelancer = Actor{ID: "freelancer-1", Role: RoleFreelancer}
	outsider   = Actor{ID: "stranger", Role: RoleClient}
	moderator  = Actor{ID: "moderator-1", Role: RoleModerator}
	mediator   = Actor{ID: "mediator-1", Role: RoleMediator}
)

var testMediators = []config.Mediator{
	{ID: "mediator-1", Name: "Anna"},
	{ID: "mediator-2", Name: "Ivan"},
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) waitFor(t *testing.T, eventType string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return p.count(eventType) >= n },
		time.Second, 5*time.Millisecond, "ожидалось событие %s", eventType)
}

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, text string) (scoring.Assessment, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(scoring.Assessment), args.Error(1)
}

type testEnv struct {
	store     *memory.Store
	publisher *recordingPublisher
	disputes  *DisputeService
	mediation *MediationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	mediation := NewMediationService(store, store, pub, MediationConfig{
		LeadTime:  48 * time.Hour,
		Mediators: testMediators,
	})
	return &testEnv{
		store:     store,
		publisher: pub,
		disputes:  NewDisputeService(store, mediation, pub, 7*24*time.Hour),
		mediation: mediation,
	}
}

func validDisputeInput() CreateDisputeInput {
	amount := 250.0
	return CreateDisputeInput{
		Kind:        models.DisputeKindOrder,
		Initiator:   models.Party{ID: client.ID, Role: models.RoleClient},
		Respondent:  models.Party{ID: freelancer.ID, Role: models.RoleFreelancer},
		Title:       "Работа не сдана",
		Description: "Фрилансер не сдал работу в срок",
		Amount:      &amount,
		Category:    "web",
	}
}

func (e *testEnv) createDispute(t *testing.T) *models.Dispute {
	t.Helper()
	d, err := e.disputes.CreateDispute(context.Background(), validDisputeInput())
	require.NoError(t, err)
	return d
}

// underReview создаёт спор и переводит его на рассмотрение.
func (e *testEnv) underReview(t *testing.T) *models.Dispute {
	t.Helper()
	d := e.createDispute(t)
	d, err := e.disputes.RespondToDispute(context.Background(), d.ID, freelancer, "Работа сдана, вот ссылка")
	require.NoError(t, err)
	return d
}

func timelineKinds(d *models.Dispute) []models.TimelineEventKind {
	kinds := make([]models.TimelineEventKind, 0, len(d.Timeline))
	for _, ev := range d.Timeline {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
