package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/metrics"
)

// Table names exportable data sets.
type Table string

const (
	TableParticipants Table = "participants"
	TableSessions     Table = "sessions"
	TableMessages     Table = "messages"
)

// Valid reports whether the table name is exportable.
func (t Table) Valid() bool {
	return t == TableParticipants || t == TableSessions || t == TableMessages
}

// Repository supplies full-table dumps for the admin export surface.
// Messages are filtered by experiment through their session.
type Repository interface {
	DumpParticipants(ctx context.Context) ([]participant.Participant, error)
	DumpSessions(ctx context.Context, experimentID *string) ([]session.Session, error)
	DumpMessages(ctx context.Context, experimentID *string) ([]chat.Message, error)
}

// Service backs the admin listing and export endpoints.
type Service interface {
	ListSessions(ctx context.Context, filter session.Filter) ([]session.Session, error)
	ExportCSV(ctx context.Context, table Table, experimentID *string) ([]byte, error)
	ExportJSON(ctx context.Context, table Table, experimentID *string) ([]byte, error)
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	dumps    Repository
	sessions session.Repository
	log      zerolog.Logger
}

// NewService wires dependencies.
func NewService(dumps Repository, sessions session.Repository, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		dumps:    dumps,
		sessions: sessions,
		log:      log.With().Str("component", "export").Logger(),
	}
}

var _ Service = (*ServiceImpl)(nil)

func (s *ServiceImpl) ListSessions(ctx context.Context, filter session.Filter) ([]session.Session, error) {
	return s.sessions.ListByFilter(ctx, filter)
}

// ExportCSV renders the table with a stable column order so repeated exports
// of the same experiment diff cleanly.
func (s *ServiceImpl) ExportCSV(ctx context.Context, table Table, experimentID *string) ([]byte, error) {
	header, rows, err := s.tabulate(ctx, table, experimentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	metrics.RecordExport(string(table), len(rows))
	return buf.Bytes(), nil
}

func (s *ServiceImpl) ExportJSON(ctx context.Context, table Table, experimentID *string) ([]byte, error) {
	if !table.Valid() {
		return nil, apperrors.Newf(apperrors.KindValidation, "invalid export table %q", table)
	}

	var (
		payload any
		count   int
		err     error
	)
	switch table {
	case TableParticipants:
		var rows []participant.Participant
		rows, err = s.dumps.DumpParticipants(ctx)
		payload, count = rows, len(rows)
	case TableSessions:
		var rows []session.Session
		rows, err = s.dumps.DumpSessions(ctx, experimentID)
		payload, count = rows, len(rows)
	case TableMessages:
		var rows []chat.Message
		rows, err = s.dumps.DumpMessages(ctx, experimentID)
		payload, count = rows, len(rows)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordExport(string(table), count)
	return json.Marshal(payload)
}

func (s *ServiceImpl) tabulate(ctx context.Context, table Table, experimentID *string) ([]string, [][]string, error) {
	switch table {
	case TableParticipants:
		rows, err := s.dumps.DumpParticipants(ctx)
		if err != nil {
			return nil, nil, err
		}
		header := []string{"id", "external_id", "study_id", "assigned_condition_id", "created_at"}
		out := make([][]string, 0, len(rows))
		for _, p := range rows {
			out = append(out, []string{
				p.PublicID, p.ExternalID, p.StudyID,
				strOrEmpty(p.AssignedConditionID),
				formatTime(p.CreatedAt),
			})
		}
		return header, out, nil

	case TableSessions:
		rows, err := s.dumps.DumpSessions(ctx, experimentID)
		if err != nil {
			return nil, nil, err
		}
		header := []string{"id", "participant_id", "experiment_id", "condition_id", "status", "turn_count", "started_at", "ended_at"}
		out := make([][]string, 0, len(rows))
		for _, sess := range rows {
			ended := ""
			if sess.EndedAt != nil {
				ended = formatTime(*sess.EndedAt)
			}
			out = append(out, []string{
				sess.PublicID, sess.ParticipantID, sess.ExperimentID, sess.ConditionID,
				string(sess.Status), strconv.Itoa(sess.TurnCount),
				formatTime(sess.StartedAt), ended,
			})
		}
		return header, out, nil

	case TableMessages:
		rows, err := s.dumps.DumpMessages(ctx, experimentID)
		if err != nil {
			return nil, nil, err
		}
		header := []string{
			"chat_session_id", "turn_index", "role", "text", "created_at",
			"condition_id", "prompt_fingerprint", "model", "temperature", "max_tokens",
			"prompt_tokens", "completion_tokens", "total_tokens",
		}
		out := make([][]string, 0, len(rows))
		for _, m := range rows {
			out = append(out, []string{
				m.SessionID, strconv.Itoa(m.TurnIndex), string(m.Role), m.Text, formatTime(m.CreatedAt),
				m.ConditionID, m.PromptFingerprint, m.Model,
				strconv.FormatFloat(m.Temperature, 'f', -1, 64), strconv.Itoa(m.MaxTokens),
				intOrEmpty(m.PromptTokens), intOrEmpty(m.CompletionTokens), intOrEmpty(m.TotalTokens),
			})
		}
		return header, out, nil
	}

	return nil, nil, apperrors.Newf(apperrors.KindValidation, "invalid export table %q", table)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
