package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adsight/adsight/internal/charts"
	"github.com/adsight/adsight/internal/history"
	"github.com/adsight/adsight/internal/nl2sql"
	"github.com/adsight/adsight/internal/observability"
	"github.com/adsight/adsight/internal/query"
)

var ErrQuestionRequired = errors.New("question is required")

// GenerationError reports that no SQL could be produced for the question.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate sql: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError reports that the generated SQL failed or was rejected.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type Interpreter interface {
	Interpret(ctx context.Context, question, sqlText string, result query.Result) string
}

type ChartBuilder interface {
	Build(ctx context.Context, kind charts.Kind, limit int) (*charts.Figure, error)
}

type HistoryWriter interface {
	Insert(ctx context.Context, in history.InsertInput) (history.Record, error)
}

type Answer struct {
	Question        string         `json:"question"`
	SQLQuery        string         `json:"sql_query"`
	RawResults      []query.Record `json:"raw_results"`
	Response        string         `json:"response"`
	ChartType       charts.Kind    `json:"chart_type,omitempty"`
	Visualization   *charts.Figure `json:"visualization,omitempty"`
	Truncated       bool           `json:"truncated,omitempty"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
}

type Config struct {
	Translator  nl2sql.Translator
	Interpreter Interpreter
	Engine      query.Engine
	Charts      ChartBuilder
	History     HistoryWriter
	Logger      *slog.Logger
	// MaxRows caps generated query results; zero leaves the engine default.
	MaxRows int
}

// Service answers a question by generating SQL, running it and explaining the
// rows.
type Service struct {
	translator  nl2sql.Translator
	interpreter Interpreter
	engine      query.Engine
	charts      ChartBuilder
	history     HistoryWriter
	logger      *slog.Logger
	maxRows     int
	now         func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if cfg.Interpreter == nil {
		return nil, fmt.Errorf("interpreter is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		translator:  cfg.Translator,
		interpreter: cfg.Interpreter,
		engine:      cfg.Engine,
		charts:      cfg.Charts,
		history:     cfg.History,
		logger:      logger,
		maxRows:     cfg.MaxRows,
		now:         time.Now,
	}, nil
}

func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	start := s.now()
	question = strings.TrimSpace(question)
	if question == "" {
		observability.ObserveAsk(observability.AskOutcomeEmptyQuestion)
		return Answer{}, ErrQuestionRequired
	}
	s.logger.InfoContext(ctx, "processing_question", slog.String("question", question))

	generated, err := s.translator.Translate(ctx, question)
	if err != nil {
		observability.ObserveAsk(observability.AskOutcomeNoSQL)
		s.logger.WarnContext(ctx, "sql_generation_failed", slog.Any("error", err))
		return Answer{}, &GenerationError{Err: err}
	}
	s.logger.InfoContext(ctx, "sql_generated", slog.String("sql", generated.SQL), slog.String("model", generated.Model))

	result, err := s.engine.Execute(ctx, query.Request{SQL: generated.SQL, MaxRows: s.maxRows})
	if err != nil {
		if errors.Is(err, query.ErrStatementNotAllowed) {
			observability.ObserveAsk(observability.AskOutcomeRejected)
		} else {
			observability.ObserveAsk(observability.AskOutcomeFailed)
		}
		s.logger.ErrorContext(ctx, "query_execution_failed", slog.String("sql", generated.SQL), slog.Any("error", err))
		return Answer{}, &ExecutionError{SQL: generated.SQL, Err: err}
	}
	records := result.Records()
	s.logger.DebugContext(ctx, "query_executed", slog.Int("rows", len(records)), slog.Duration("duration", result.Duration))

	answer := Answer{
		Question:   question,
		SQLQuery:   generated.SQL,
		RawResults: records,
		Response:   s.interpreter.Interpret(ctx, question, generated.SQL, result),
		Truncated:  result.Truncated,
	}

	if kind := charts.Select(question, records); kind != charts.KindNone && s.charts != nil {
		figure, err := s.charts.Build(ctx, kind, 0)
		if err != nil {
			s.logger.WarnContext(ctx, "chart_build_failed", slog.String("chart_type", string(kind)), slog.Any("error", err))
		} else if figure != nil {
			answer.ChartType = kind
			answer.Visualization = figure
		}
	}

	answer.ExecutionTimeMs = s.now().Sub(start).Milliseconds()

	if s.history != nil {
		if _, err := s.history.Insert(ctx, history.InsertInput{
			Question:        question,
			SQLQuery:        generated.SQL,
			ResponseSummary: answer.Response,
			ExecutionTimeMs: answer.ExecutionTimeMs,
		}); err != nil {
			s.logger.WarnContext(ctx, "history_write_failed", slog.Any("error", err))
		}
	}

	observability.ObserveAsk(observability.AskOutcomeAnswered)
	return answer, nil
}
