package server

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/export"
	"github.com/docstruct/docstruct/internal/extract"
	"github.com/docstruct/docstruct/internal/llm"
	"github.com/docstruct/docstruct/internal/llm/groq"
	"github.com/docstruct/docstruct/internal/repository"
)

// sessionState is the per-session working set: the memoized text of the last
// uploaded file and the last run's output. Extraction runs once per upload;
// preview and extract both read the cached text.
type sessionState struct {
	Filename  string
	Text      string
	Pages     int
	Pairs     []llm.ExtractedPair
	XLSX      []byte
	LastError string
}

// Service carries the handler dependencies. The LLM client is built per
// request from explicit config (env key, optionally overridden by the
// session-supplied key); no ambient global holds the credential.
type Service struct {
	cfg       *common.Config
	extractor extract.TextExtractor
	exporter  *export.Service
	runs      repository.RunRepository
	log       *slog.Logger

	mu     sync.Mutex
	states map[string]*sessionState
}

func NewService(cfg *common.Config, ex extract.TextExtractor, xp *export.Service, runs repository.RunRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		extractor: ex,
		exporter:  xp,
		runs:      runs,
		log:       log,
		states:    make(map[string]*sessionState),
	}
}

// newClient builds a Groq client for one request. An empty key yields an
// unconfigured client; the handlers report that as the disconnected state.
func (s *Service) newClient(apiKey string) *groq.Client {
	return groq.NewClient(groq.Config{
		APIKey:      apiKey,
		BaseURL:     s.cfg.LLM.BaseURL,
		Model:       s.cfg.LLM.Model,
		Temperature: s.cfg.LLM.Temperature,
		Timeout:     s.cfg.LLM.Timeout,
	}, s.log)
}

// state returns the working set for a session token, creating it on demand.
func (s *Service) state(token string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[token]
	if !ok {
		st = &sessionState{}
		s.states[token] = st
	}
	return st
}

// resetState replaces the working set for a token (new upload).
func (s *Service) resetState(token string, st *sessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[token] = st
}

func newStateToken() string {
	return uuid.New().String()
}
