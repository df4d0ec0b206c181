package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
	"github.com/emirhan/joblink/pkg/ratelimit"
	"github.com/emirhan/joblink/repository"
	"github.com/emirhan/joblink/ws"
)

// ─── Fake'ler ───

// fakeHub, yayınlanan event'leri kaydeden EventPublisher.
type fakeHub struct {
	mu     sync.Mutex
	events []publishedEvent
	online map[string]bool
}

type publishedEvent struct {
	userID string // boş ise BroadcastToAll
	event  ws.Event
}

func newFakeHub() *fakeHub {
	return &fakeHub{online: make(map[string]bool)}
}

func (h *fakeHub) BroadcastToAll(ev ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, publishedEvent{event: ev})
}

func (h *fakeHub) BroadcastToUser(userID string, ev ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, publishedEvent{userID: userID, event: ev})
}

func (h *fakeHub) IsUserOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[userID]
}

func (h *fakeHub) GetOnlineUserIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.online))
	for id := range h.online {
		ids = append(ids, id)
	}
	return ids
}

func (h *fakeHub) eventsFor(userID, op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.userID == userID && e.event.Op == op {
			n++
		}
	}
	return n
}

// fakeUserRepo, in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fakeJobRepo, application ilişkilerini map'te tutar.
type fakeJobRepo struct {
	jobs         map[string]*models.Job
	applications map[string]bool // "employerID|applicantID" → true
	applicants   []models.Candidate
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job", pkg.ErrNotFound)
	}
	return j, nil
}

func (r *fakeJobRepo) GetApplicationByID(ctx context.Context, id string) (*models.Application, error) {
	return nil, fmt.Errorf("%w: application", pkg.ErrNotFound)
}

func (r *fakeJobRepo) ListApplicantsForEmployer(ctx context.Context, employerID string) ([]models.Candidate, error) {
	return r.applicants, nil
}

func (r *fakeJobRepo) HasApplicationBetween(ctx context.Context, employerID, applicantID string) (bool, error) {
	return r.applications[employerID+"|"+applicantID], nil
}

// fakeConvRepo, in-memory ConversationRepository. failCreateWith ile
// Create'in belirli bir hatayla düşmesi simüle edilir (UNIQUE yarışı).
type fakeConvRepo struct {
	mu             sync.Mutex
	byID           map[string]*models.Conversation
	nextID         int
	failCreateWith error
	createCalls    int
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{byID: make(map[string]*models.Conversation)}
}

func (r *fakeConvRepo) Create(ctx context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.failCreateWith != nil {
		return r.failCreateWith
	}
	for _, c := range r.byID {
		if c.ParticipantLow == conv.ParticipantLow && c.ParticipantHigh == conv.ParticipantHigh && strEq(c.JobID, conv.JobID) {
			return fmt.Errorf("%w: conversation already exists", pkg.ErrAlreadyExists)
		}
	}
	r.nextID++
	conv.ID = fmt.Sprintf("conv-%d", r.nextID)
	conv.CreatedAt = time.Now()
	cp := *conv
	r.byID[conv.ID] = &cp
	return nil
}

func (r *fakeConvRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: conversation", pkg.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConvRepo) GetByPairAndJob(ctx context.Context, low, high string, jobID *string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.ParticipantLow == low && c.ParticipantHigh == high && strEq(c.JobID, jobID) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) ListForUser(ctx context.Context, userID string) ([]models.ConversationWithUser, error) {
	return nil, nil
}

func (r *fakeConvRepo) TouchLastMessage(ctx context.Context, conversationID string) error {
	return nil
}

// seed, var olan bir konuşmayı doğrudan map'e koyar (yarış senaryosu).
func (r *fakeConvRepo) seed(conv *models.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[conv.ID] = conv
}

func strEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fakeMsgRepo, sadece Create'i kaydeder.
type fakeMsgRepo struct {
	mu      sync.Mutex
	created []models.Message
}

func (r *fakeMsgRepo) Create(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%d", len(r.created)+1)
	msg.CreatedAt = time.Now()
	r.created = append(r.created, *msg)
	return nil
}

func (r *fakeMsgRepo) List(ctx context.Context, conversationID, beforeID string, limit int) ([]models.Message, error) {
	return nil, nil
}

func (r *fakeMsgRepo) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	return 0, nil
}

func (r *fakeMsgRepo) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (r *fakeMsgRepo) ListUsersWithStaleUnread(ctx context.Context, olderThan time.Time) ([]models.StaleUnread, error) {
	return nil, nil
}

// fakeNotifRepo, bildirimleri kaydeder.
type fakeNotifRepo struct {
	mu      sync.Mutex
	created []models.Notification
	failing bool
}

func (r *fakeNotifRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("notification insert failed")
	}
	n.ID = fmt.Sprintf("notif-%d", len(r.created)+1)
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotifRepo) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return nil, nil
}

func (r *fakeNotifRepo) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, id, userID string) error { return nil }
func (r *fakeNotifRepo) MarkAllRead(ctx context.Context, userID string) error { return nil }

// interface uyumluluğu derleme zamanında doğrulanır
var (
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.JobRepository          = (*fakeJobRepo)(nil)
	_ repository.ConversationRepository = (*fakeConvRepo)(nil)
	_ repository.MessageRepository      = (*fakeMsgRepo)(nil)
	_ repository.NotificationRepository = (*fakeNotifRepo)(nil)
	_ ws.EventPublisher                 = (*fakeHub)(nil)
)

// ─── Test Fixture ───

type convFixture struct {
	svc       ConversationService
	hub       *fakeHub
	convRepo  *fakeConvRepo
	msgRepo   *fakeMsgRepo
	notifRepo *fakeNotifRepo
	jobRepo   *fakeJobRepo
	limiter   *ratelimit.Limiter
}

func newConvFixture(t *testing.T) *convFixture {
	t.Helper()

	users := map[string]*models.User{
		"emp1":   {ID: "emp1", Email: "emp1@x.com", Username: "acme", Role: models.RoleEmployer},
		"work1":  {ID: "work1", Email: "w1@x.com", Username: "worker1", Role: models.RoleEmployee},
		"work2":  {ID: "work2", Email: "w2@x.com", Username: "worker2", Role: models.RoleEmployee},
		"admin1": {ID: "admin1", Email: "a@x.com", Username: "admin", Role: models.RoleAdmin},
	}

	jobID := "job1"
	jobRepo := &fakeJobRepo{
		jobs: map[string]*models.Job{
			jobID: {ID: jobID, EmployerID: "emp1", Title: "Garson", Status: models.JobStatusOpen},
		},
		applications: map[string]bool{
			"emp1|work1": true, // work1 başvurdu, work2 başvurmadı
		},
	}

	f := &convFixture{
		hub:       newFakeHub(),
		convRepo:  newFakeConvRepo(),
		msgRepo:   &fakeMsgRepo{},
		notifRepo: &fakeNotifRepo{},
		jobRepo:   jobRepo,
		limiter:   ratelimit.New(100, time.Minute),
	}
	t.Cleanup(f.limiter.Stop)

	f.svc = NewConversationService(
		f.convRepo,
		&fakeUserRepo{users: users},
		jobRepo,
		f.msgRepo,
		f.notifRepo,
		f.hub,
		f.limiter,
	)
	return f
}

// ─── Testler ───

func TestStartConversationCreatesAndResolves(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	req := &models.StartConversationRequest{CounterpartID: "work1"}

	conv1, _, err := f.svc.StartConversation(ctx, "emp1", req)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if conv1.ID == "" {
		t.Fatal("conversation id is empty")
	}
	if conv1.ParticipantLow != "emp1" || conv1.ParticipantHigh != "work1" {
		t.Errorf("pair = (%s, %s), want sorted (emp1, work1)", conv1.ParticipantLow, conv1.ParticipantHigh)
	}

	// Aynı çift için ikinci çağrı yeni konuşma oluşturmaz.
	conv2, _, err := f.svc.StartConversation(ctx, "emp1", req)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if conv2.ID != conv1.ID {
		t.Errorf("second start returned %s, want resolved %s", conv2.ID, conv1.ID)
	}

	// Karşı taraf işvereni seçerek başlatırsa da aynı konuşma çözümlenir.
	conv3, _, err := f.svc.StartConversation(ctx, "work1", &models.StartConversationRequest{CounterpartID: "emp1"})
	if err != nil {
		t.Fatalf("reverse start: %v", err)
	}
	if conv3.ID != conv1.ID {
		t.Errorf("reverse start returned %s, want resolved %s", conv3.ID, conv1.ID)
	}
}

func TestStartConversationJobContextSeparatesThreads(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	jobID := "job1"

	plain, _, err := f.svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{CounterpartID: "work1"})
	if err != nil {
		t.Fatalf("plain start: %v", err)
	}

	withJob, _, err := f.svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{
		CounterpartID: "work1",
		JobID:         &jobID,
	})
	if err != nil {
		t.Fatalf("job start: %v", err)
	}

	// Aynı çift ama farklı ilan bağlamı → ayrı konuşma.
	if withJob.ID == plain.ID {
		t.Error("job-scoped conversation resolved to the plain one, want a separate thread")
	}
}

func TestStartConversationEligibility(t *testing.T) {
	tests := []struct {
		name        string
		caller      string
		counterpart string
		wantErr     error
	}{
		{"employer to applicant allowed", "emp1", "work1", nil},
		{"employer to non-applicant forbidden", "emp1", "work2", pkg.ErrForbidden},
		{"employee to employer allowed", "work2", "emp1", nil},
		{"employee to employee forbidden", "work1", "work2", pkg.ErrForbidden},
		{"admin to anyone allowed", "admin1", "work2", nil},
		{"self conversation rejected", "emp1", "emp1", pkg.ErrBadRequest},
		{"unknown counterpart rejected", "emp1", "ghost", pkg.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConvFixture(t)
			_, _, err := f.svc.StartConversation(context.Background(), tt.caller, &models.StartConversationRequest{
				CounterpartID: tt.counterpart,
			})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartConversationUniqueRaceResolves(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	// Yarış senaryosu: Create UNIQUE'e takılır çünkü "diğer istek"
	// konuşmayı biz GetByPairAndJob'dan sonra oluşturdu.
	existing := &models.Conversation{
		ID:              "conv-race",
		ParticipantLow:  "emp1",
		ParticipantHigh: "work1",
		CreatedAt:       time.Now(),
	}
	f.convRepo.failCreateWith = fmt.Errorf("%w: conversation already exists", pkg.ErrAlreadyExists)
	f.convRepo.seed(existing)

	conv, _, err := f.svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{CounterpartID: "work1"})
	if err != nil {
		t.Fatalf("start during race: %v", err)
	}
	if conv.ID != "conv-race" {
		t.Errorf("resolved conversation = %s, want conv-race", conv.ID)
	}
}

func TestStartConversationInitialMessageAndEvents(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	conv, msg, err := f.svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{
		CounterpartID:  "work1",
		InitialMessage: "Merhaba, başvurunuzu inceledik",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if msg == nil || msg.ConversationID != conv.ID {
		t.Fatalf("initial message = %+v, want tied to %s", msg, conv.ID)
	}
	if msg.Author == nil || msg.Author.ID != "emp1" {
		t.Error("initial message author not attached")
	}

	// Karşı tarafa: conversation_create + message_create + notification_create
	if n := f.hub.eventsFor("work1", ws.OpConversationCreate); n != 1 {
		t.Errorf("counterpart conversation_create events = %d, want 1", n)
	}
	if n := f.hub.eventsFor("work1", ws.OpMessageCreate); n != 1 {
		t.Errorf("counterpart message_create events = %d, want 1", n)
	}
	if n := f.hub.eventsFor("work1", ws.OpNotificationCreate); n != 1 {
		t.Errorf("counterpart notification_create events = %d, want 1", n)
	}
	// Başlatan tarafa da conversation_create gider.
	if n := f.hub.eventsFor("emp1", ws.OpConversationCreate); n != 1 {
		t.Errorf("caller conversation_create events = %d, want 1", n)
	}

	f.notifRepo.mu.Lock()
	defer f.notifRepo.mu.Unlock()
	if len(f.notifRepo.created) != 1 || f.notifRepo.created[0].UserID != "work1" {
		t.Errorf("notifications = %+v, want one for work1", f.notifRepo.created)
	}
}

func TestStartConversationNotificationFailureDoesNotFail(t *testing.T) {
	f := newConvFixture(t)
	f.notifRepo.failing = true

	conv, _, err := f.svc.StartConversation(context.Background(), "emp1", &models.StartConversationRequest{
		CounterpartID: "work1",
	})
	if err != nil {
		t.Fatalf("start should survive notification failure: %v", err)
	}
	if conv == nil {
		t.Fatal("conversation is nil")
	}
	// Bildirim kaydı düştüğü için notification_create yayınlanmaz.
	if n := f.hub.eventsFor("work1", ws.OpNotificationCreate); n != 0 {
		t.Errorf("notification_create events = %d, want 0", n)
	}
}

func TestStartConversationRateLimited(t *testing.T) {
	f := newConvFixture(t)

	tight := ratelimit.New(1, time.Minute)
	t.Cleanup(tight.Stop)

	svc := NewConversationService(
		f.convRepo,
		&fakeUserRepo{users: map[string]*models.User{
			"emp1":  {ID: "emp1", Username: "acme", Role: models.RoleEmployer},
			"work1": {ID: "work1", Username: "worker1", Role: models.RoleEmployee},
		}},
		f.jobRepo,
		f.msgRepo,
		f.notifRepo,
		f.hub,
		tight,
	)

	ctx := context.Background()
	if _, _, err := svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{CounterpartID: "work1"}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, _, err := svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{CounterpartID: "work1"})
	if !errors.Is(err, pkg.ErrBadRequest) {
		t.Errorf("second start error = %v, want rate limit (bad request)", err)
	}
}

func TestListCandidatesByRole(t *testing.T) {
	f := newConvFixture(t)
	f.jobRepo.applicants = []models.Candidate{{UserID: "work1", Username: "worker1"}}

	got, err := f.svc.ListCandidates(context.Background(), "emp1")
	if err != nil {
		t.Fatalf("employer candidates: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "work1" {
		t.Errorf("employer candidates = %+v, want applicant work1", got)
	}

	got, err = f.svc.ListCandidates(context.Background(), "work1")
	if err != nil {
		t.Fatalf("employee candidates: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "emp1" {
		t.Errorf("employee candidates = %+v, want employer emp1", got)
	}
}

func TestGetConversationParticipantOnly(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	conv, _, err := f.svc.StartConversation(ctx, "emp1", &models.StartConversationRequest{CounterpartID: "work1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := f.svc.GetConversation(ctx, "work1", conv.ID); err != nil {
		t.Errorf("participant access failed: %v", err)
	}

	_, err = f.svc.GetConversation(ctx, "work2", conv.ID)
	if !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("outsider access error = %v, want forbidden", err)
	}
}
