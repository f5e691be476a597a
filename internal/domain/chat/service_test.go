package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/llm"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/database/entities"
	conditionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/condition"
	eventrepo "chatbot-research/experiment-api/internal/infrastructure/repository/event"
	messagerepo "chatbot-research/experiment-api/internal/infrastructure/repository/message"
	participantrepo "chatbot-research/experiment-api/internal/infrastructure/repository/participant"
	sessionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/session"
)

type fakeProvider struct {
	fn    func(req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
	calls []llm.ChatCompletionRequest
}

func (f *fakeProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.calls = append(f.calls, req)
	if f.fn != nil {
		return f.fn(req)
	}
	return &llm.ChatCompletionResponse{
		ID: fmt.Sprintf("cmpl-%d", len(f.calls)),
		Choices: []llm.ChatCompletionChoice{
			{Message: llm.ChatMessage{Role: "assistant", Content: "reply " + strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)}},
		},
		Usage: &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type testEnv struct {
	db       *gorm.DB
	provider *fakeProvider
	sessions session.Service
	chat     chat.Service
	messages chat.MessageRepository
}

func newTestEnv(t *testing.T, window int) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&entities.Participant{},
		&entities.Condition{},
		&entities.ChatSession{},
		&entities.Message{},
		&entities.Event{},
	)
	if err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	nop := zerolog.Nop()
	people := participantrepo.NewRepository(db)
	conditions := conditionrepo.NewRepository(db)
	sessions := sessionrepo.NewRepository(db)
	messages := messagerepo.NewRepository(db)
	auditLog := audit.NewLogger(eventrepo.NewRepository(db), nop)
	provider := &fakeProvider{}

	assignment := participant.NewService(people, conditions, nop)
	lifecycle := session.NewService(
		sessions, conditions, assignment, people, auditLog,
		"https://survey.example.com/done", nop,
	)
	turns := chat.NewService(sessions, lifecycle, conditions, messages, provider, auditLog, window, nop)

	return &testEnv{
		db:       db,
		provider: provider,
		sessions: lifecycle,
		chat:     turns,
		messages: messages,
	}
}

func (e *testEnv) seedCondition(t *testing.T, publicID string) {
	t.Helper()
	err := e.db.Create(&entities.Condition{
		PublicID:          publicID,
		ExperimentID:      "exp-1",
		Name:              publicID,
		SystemPrompt:      "You are arm " + publicID + ".",
		PromptFingerprint: "fp-" + publicID,
		Model:             "gpt-4o-mini",
		Temperature:       0.7,
		MaxTokens:         512,
		IsActive:          true,
	}).Error
	if err != nil {
		t.Fatalf("seed condition: %v", err)
	}
}

func (e *testEnv) startSession(t *testing.T) *session.Session {
	t.Helper()
	result, err := e.sessions.Start(context.Background(), session.StartParams{
		ExternalID:   "PROLIFIC42",
		StudyID:      "study-1",
		ExperimentID: "exp-1",
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return result.Session
}

func TestHandleTurnRecordsContiguousAlternatingTurns(t *testing.T) {
	env := newTestEnv(t, 20)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.chat.HandleTurn(ctx, sess.PublicID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	var rows []entities.Message
	env.db.Where("chat_session_id = ?", sess.PublicID).Order("turn_index ASC").Find(&rows)
	if len(rows) != 6 {
		t.Fatalf("messages = %d, want 6", len(rows))
	}
	for i, row := range rows {
		if row.TurnIndex != i {
			t.Errorf("row %d has turn index %d", i, row.TurnIndex)
		}
		wantRole := "user"
		if i%2 == 1 {
			wantRole = "assistant"
		}
		if row.Role != wantRole {
			t.Errorf("turn %d role = %s, want %s", i, row.Role, wantRole)
		}
	}

	stored, err := env.sessions.Get(ctx, sess.PublicID)
	if err != nil {
		t.Fatalf("re-read session: %v", err)
	}
	if stored.TurnCount != 3 {
		t.Errorf("turn count = %d, want 3", stored.TurnCount)
	}
}

func TestHandleTurnBoundsMemoryWindow(t *testing.T) {
	env := newTestEnv(t, 2)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.chat.HandleTurn(ctx, sess.PublicID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	if _, err := env.chat.HandleTurn(ctx, sess.PublicID, "message 5"); err != nil {
		t.Fatalf("sixth turn: %v", err)
	}

	payload := env.provider.calls[len(env.provider.calls)-1].Messages
	// system + (window 2 pairs = 4 history messages) + new user text
	if len(payload) != 6 {
		t.Fatalf("payload length = %d, want 6", len(payload))
	}
	if payload[0].Role != "system" || payload[0].Content != "You are arm cond_a." {
		t.Errorf("payload[0] = %+v, want the system prompt", payload[0])
	}
	if payload[1].Content != "message 3" {
		t.Errorf("oldest replayed message = %q, want the window cutoff", payload[1].Content)
	}
	last := payload[len(payload)-1]
	if last.Role != "user" || last.Content != "message 5" {
		t.Errorf("payload tail = %+v, want the new user text", last)
	}
	for i := 1; i < len(payload)-1; i++ {
		wantRole := "user"
		if i%2 == 0 {
			wantRole = "assistant"
		}
		if payload[i].Role != wantRole {
			t.Errorf("payload[%d] role = %s, want %s", i, payload[i].Role, wantRole)
		}
	}
}

func TestHandleTurnRejectsTerminatedSession(t *testing.T) {
	env := newTestEnv(t, 20)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	if _, err := env.sessions.End(ctx, sess.PublicID); err != nil {
		t.Fatalf("end session: %v", err)
	}

	_, err := env.chat.HandleTurn(ctx, sess.PublicID, "too late")
	if !apperrors.IsKind(err, apperrors.KindNotActive) {
		t.Fatalf("err = %v, want kind %s", err, apperrors.KindNotActive)
	}
	if len(env.provider.calls) != 0 {
		t.Errorf("gateway called %d times for a terminated session", len(env.provider.calls))
	}

	count, err := env.messages.CountBySession(ctx, sess.PublicID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Errorf("messages persisted = %d, want 0", count)
	}
}

func TestHandleTurnUnknownSession(t *testing.T) {
	env := newTestEnv(t, 20)

	_, err := env.chat.HandleTurn(context.Background(), "no-such-session", "hello")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("err = %v, want kind %s", err, apperrors.KindNotFound)
	}
}

func TestHandleTurnGatewayFailurePersistsNothing(t *testing.T) {
	env := newTestEnv(t, 20)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	env.provider.fn = func(req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
		return nil, errors.New("upstream 503")
	}

	_, err := env.chat.HandleTurn(ctx, sess.PublicID, "hello")
	if !apperrors.IsKind(err, apperrors.KindGatewayFailure) {
		t.Fatalf("err = %v, want kind %s", err, apperrors.KindGatewayFailure)
	}

	count, err := env.messages.CountBySession(ctx, sess.PublicID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Errorf("messages persisted = %d, want 0; user text must not outlive a failed turn", count)
	}

	stored, err := env.sessions.Get(ctx, sess.PublicID)
	if err != nil {
		t.Fatalf("re-read session: %v", err)
	}
	if stored.TurnCount != 0 {
		t.Errorf("turn count = %d, want 0", stored.TurnCount)
	}

	var events int64
	env.db.Model(&entities.Event{}).Where("event_type = ?", audit.TypeError).Count(&events)
	if events != 1 {
		t.Errorf("error audit events = %d, want 1", events)
	}
}

func TestHandleTurnSnapshotsProvenance(t *testing.T) {
	env := newTestEnv(t, 20)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	result, err := env.chat.HandleTurn(ctx, sess.PublicID, "hello")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if result.PromptFingerprint != "fp-cond_a" {
		t.Errorf("result fingerprint = %q, want fp-cond_a", result.PromptFingerprint)
	}

	var rows []entities.Message
	env.db.Where("chat_session_id = ?", sess.PublicID).Order("turn_index ASC").Find(&rows)
	if len(rows) != 2 {
		t.Fatalf("messages = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.ConditionID != "cond_a" {
			t.Errorf("%s message condition = %q, want cond_a", row.Role, row.ConditionID)
		}
		if row.PromptFingerprint != "fp-cond_a" {
			t.Errorf("%s message fingerprint = %q, want fp-cond_a", row.Role, row.PromptFingerprint)
		}
		if row.Model != "gpt-4o-mini" {
			t.Errorf("%s message model = %q", row.Role, row.Model)
		}
		if row.MaxTokens != 512 {
			t.Errorf("%s message max tokens = %d, want 512", row.Role, row.MaxTokens)
		}
	}

	user, assistant := rows[0], rows[1]
	if user.PromptTokens == nil || *user.PromptTokens != 10 {
		t.Errorf("user prompt tokens = %v, want 10", user.PromptTokens)
	}
	if assistant.CompletionTokens == nil || *assistant.CompletionTokens != 5 {
		t.Errorf("assistant completion tokens = %v, want 5", assistant.CompletionTokens)
	}
	if assistant.TotalTokens == nil || *assistant.TotalTokens != 15 {
		t.Errorf("assistant total tokens = %v, want 15", assistant.TotalTokens)
	}
}

func TestHandleFinalTurnEndsSessionWithRedirect(t *testing.T) {
	env := newTestEnv(t, 20)
	env.seedCondition(t, "cond_a")
	sess := env.startSession(t)
	ctx := context.Background()

	result, err := env.chat.HandleFinalTurn(ctx, sess.PublicID, "goodbye")
	if err != nil {
		t.Fatalf("final turn: %v", err)
	}
	if result.AssistantText == "" {
		t.Error("final turn returned no assistant text")
	}
	if !strings.Contains(result.RedirectURL, "pid=PROLIFIC42") {
		t.Errorf("redirect %q missing participant id", result.RedirectURL)
	}
	if !strings.Contains(result.RedirectURL, "chat_session_id="+sess.PublicID) {
		t.Errorf("redirect %q missing session id", result.RedirectURL)
	}
	if !strings.Contains(result.RedirectURL, "condition_id=cond_a") {
		t.Errorf("redirect %q missing condition id", result.RedirectURL)
	}

	stored, err := env.sessions.Get(ctx, sess.PublicID)
	if err != nil {
		t.Fatalf("re-read session: %v", err)
	}
	if stored.Status != session.StatusCompleted {
		t.Errorf("status = %s, want %s", stored.Status, session.StatusCompleted)
	}
	if stored.EndedAt == nil {
		t.Error("ended_at not stamped")
	}
	if stored.TurnCount != 1 {
		t.Errorf("turn count = %d, want 1", stored.TurnCount)
	}
}
