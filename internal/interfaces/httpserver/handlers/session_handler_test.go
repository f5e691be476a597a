package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/condition"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/handlers"
)

// MockSessionService is a mock implementation of session.Service.
type MockSessionService struct {
	StartFunc func(ctx context.Context, params session.StartParams) (*session.StartResult, error)
	GetFunc   func(ctx context.Context, publicID string) (*session.Session, error)
	EndFunc   func(ctx context.Context, publicID string) (*session.EndResult, error)
}

func (m *MockSessionService) Start(ctx context.Context, params session.StartParams) (*session.StartResult, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockSessionService) Get(ctx context.Context, publicID string) (*session.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, publicID)
	}
	return nil, nil
}

func (m *MockSessionService) End(ctx context.Context, publicID string) (*session.EndResult, error) {
	if m.EndFunc != nil {
		return m.EndFunc(ctx, publicID)
	}
	return nil, nil
}

func setupSessionTestRouter(handler *handlers.SessionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/session/start", handler.Start)
	r.POST("/session/end", handler.End)
	return r
}

func TestSessionHandler_Start(t *testing.T) {
	mockService := &MockSessionService{
		StartFunc: func(ctx context.Context, params session.StartParams) (*session.StartResult, error) {
			if params.ExternalID != "PROLIFIC42" || params.ExperimentID != "exp-1" {
				t.Errorf("params not forwarded: %+v", params)
			}
			return &session.StartResult{
				Session: &session.Session{
					PublicID:      "sess-1",
					ParticipantID: "part_1",
					ExperimentID:  params.ExperimentID,
					ConditionID:   "cond_a",
					Status:        session.StatusActive,
					StartedAt:     time.Now().UTC(),
				},
				Condition:   &condition.Condition{PublicID: "cond_a"},
				Participant: &participant.Participant{PublicID: "part_1", ExternalID: params.ExternalID},
			}, nil
		},
	}

	handler := handlers.NewSessionHandler(mockService, zerolog.Nop())
	router := setupSessionTestRouter(handler)

	body, _ := json.Marshal(map[string]any{
		"participant_id": "PROLIFIC42",
		"study_id":       "study-1",
		"experiment_id":  "exp-1",
	})
	req, _ := http.NewRequest("POST", "/session/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var response map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["session_id"] != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", response["session_id"])
	}
	if response["condition_id"] != "cond_a" {
		t.Errorf("condition_id = %v, want cond_a", response["condition_id"])
	}
}

func TestSessionHandler_StartMissingFields(t *testing.T) {
	handler := handlers.NewSessionHandler(&MockSessionService{}, zerolog.Nop())
	router := setupSessionTestRouter(handler)

	req, _ := http.NewRequest("POST", "/session/start", bytes.NewReader([]byte(`{"study_id":"s"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSessionHandler_StartNoActiveConditions(t *testing.T) {
	mockService := &MockSessionService{
		StartFunc: func(ctx context.Context, params session.StartParams) (*session.StartResult, error) {
			return nil, apperrors.Newf(apperrors.KindNoActiveConditions, "no active conditions for experiment %s", params.ExperimentID)
		},
	}
	handler := handlers.NewSessionHandler(mockService, zerolog.Nop())
	router := setupSessionTestRouter(handler)

	body := []byte(`{"participant_id":"p","experiment_id":"exp-1"}`)
	req, _ := http.NewRequest("POST", "/session/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var response map[string]any
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["code"] != string(apperrors.KindNoActiveConditions) {
		t.Errorf("code = %v, want %s", response["code"], apperrors.KindNoActiveConditions)
	}
}

func TestSessionHandler_End(t *testing.T) {
	endedAt := time.Now().UTC()
	mockService := &MockSessionService{
		EndFunc: func(ctx context.Context, publicID string) (*session.EndResult, error) {
			return &session.EndResult{
				Session: &session.Session{
					PublicID: publicID,
					Status:   session.StatusCompleted,
					EndedAt:  &endedAt,
				},
				Condition:   &condition.Condition{PublicID: "cond_a"},
				RedirectURL: "https://survey.example.com/done?pid=p1",
			}, nil
		},
	}
	handler := handlers.NewSessionHandler(mockService, zerolog.Nop())
	router := setupSessionTestRouter(handler)

	req, _ := http.NewRequest("POST", "/session/end", bytes.NewReader([]byte(`{"session_id":"sess-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var response map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["status"] != "completed" {
		t.Errorf("status = %v, want completed", response["status"])
	}
	if response["redirect_url"] != "https://survey.example.com/done?pid=p1" {
		t.Errorf("redirect_url = %v", response["redirect_url"])
	}
}

func TestSessionHandler_EndNotFound(t *testing.T) {
	mockService := &MockSessionService{
		EndFunc: func(ctx context.Context, publicID string) (*session.EndResult, error) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "chat session not found: %s", publicID)
		},
	}
	handler := handlers.NewSessionHandler(mockService, zerolog.Nop())
	router := setupSessionTestRouter(handler)

	req, _ := http.NewRequest("POST", "/session/end", bytes.NewReader([]byte(`{"session_id":"ghost"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
