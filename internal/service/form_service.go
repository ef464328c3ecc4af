package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/observe"
	"voxform/internal/port"
	"voxform/internal/session"
	"voxform/internal/validator"
)

const (
	// ExhaustedMessage is shown when no provider could process the input.
	ExhaustedMessage = "Sorry, I could not process that. Please try again."

	nothingFoundPrefix = "I couldn't extract any form information from your input. "
	thanksPrefix       = "Thank you! "
)

// ProcessTextInput is one typed or transcribed utterance.
type ProcessTextInput struct {
	SessionID string `json:"-"`
	Text      string `json:"text" binding:"required"`
	Backend   string `json:"backend,omitempty"`
}

// ProcessAudioInput is one recorded utterance.
type ProcessAudioInput struct {
	SessionID string
	Audio     []byte
	Format    domain.AudioFormat
	Backend   string
}

// FormService defines the voice-to-form contract.
type FormService interface {
	ProcessText(ctx context.Context, input ProcessTextInput) (*domain.ProcessResult, error)
	ProcessAudio(ctx context.Context, input ProcessAudioInput) (*domain.ProcessResult, error)
	GetForm(ctx context.Context, sessionID string) (*domain.ProcessResult, error)
	Reset(ctx context.Context, sessionID string) (*domain.ProcessResult, error)
	ProviderStatus(ctx context.Context) (*domain.StatusReport, error)
	ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)
	ClearCache(ctx context.Context) (*domain.CacheStats, error)
	Ping(ctx context.Context) error
}

// FormServiceDeps groups the collaborators of the form service. Learner,
// Archive, Email and Metrics are optional.
type FormServiceDeps struct {
	TextChain   *extractor.Chain
	AudioChain  *extractor.Chain
	Sessions    *session.Manager
	Submissions port.SubmissionRepository
	Validators  *validator.Registry
	Learner     port.PatternLearner
	Archive     port.AudioArchive
	Email       port.EmailSender
	Metrics     *observe.Metrics

	MaxInputLength int
	MaxAudioBytes  int64
}

type formService struct {
	FormServiceDeps
}

// NewFormService creates a new FormService implementation.
func NewFormService(deps FormServiceDeps) FormService {
	if deps.Validators == nil {
		deps.Validators = validator.NewDefaultRegistry()
	}
	return &formService{FormServiceDeps: deps}
}

func (s *formService) ProcessText(ctx context.Context, input ProcessTextInput) (*domain.ProcessResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domain.ErrEmptyInput
	}
	if s.MaxInputLength > 0 && utf8.RuneCountInString(text) > s.MaxInputLength {
		return nil, domain.ErrInputTooLong
	}
	chain, err := selectChain(s.TextChain, input.Backend)
	if err != nil {
		return nil, err
	}

	// Provider calls are bounded by the chain's attempt timeout, not by the client.
	ctx = context.WithoutCancel(ctx)
	logger.Info(ctx, "form.ProcessText", "session_id", input.SessionID, "chars", len(text), "backend", input.Backend)

	res := chain.Run(ctx, port.ExtractInput{Kind: domain.InputText, Text: text})
	return s.apply(ctx, input.SessionID, text, res)
}

func (s *formService) ProcessAudio(ctx context.Context, input ProcessAudioInput) (*domain.ProcessResult, error) {
	if len(input.Audio) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if s.MaxAudioBytes > 0 && int64(len(input.Audio)) > s.MaxAudioBytes {
		return nil, domain.ErrAudioTooLarge
	}
	format := input.Format
	if format == "" {
		format = domain.AudioWAV
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAudio, format)
	}
	chain, err := selectChain(s.AudioChain, input.Backend)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	logger.Info(ctx, "form.ProcessAudio", "session_id", input.SessionID, "bytes", len(input.Audio), "format", format)

	if s.Archive != nil {
		if key, err := s.Archive.Archive(ctx, input.SessionID, input.Audio, format); err != nil {
			logger.Warn(ctx, "form.ProcessAudio: archiving failed", "error", err)
		} else if key != "" {
			logger.Debug(ctx, "form.ProcessAudio: audio archived", "key", key)
		}
	}

	res := chain.Run(ctx, port.ExtractInput{Kind: domain.InputAudio, Audio: input.Audio, AudioFormat: format})
	return s.apply(ctx, input.SessionID, res.Transcript, res)
}

// apply validates the chain output, merges it into the session and handles completion.
// utterance is the text the fields came from; it may be empty for audio.
func (s *formService) apply(ctx context.Context, sessionID, utterance string, res *extractor.ChainResult) (*domain.ProcessResult, error) {
	if res.Exhausted {
		state, err := s.Sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		logger.Warn(ctx, "form: every provider failed", "diagnostic", res.Diagnostic())
		out := domain.NewFormResult(state, ExhaustedMessage)
		out.Success = false
		out.Transcript = res.Transcript
		out.Attempts = res.Attempts
		out.Diagnostic = res.Diagnostic()
		return out, nil
	}

	valid, rejected := s.Validators.Validate(res.Fields)
	if len(rejected) > 0 {
		logger.Debug(ctx, "form: values rejected by validation", "provider", res.Provider, "fields", rejected)
	}
	confidence := validator.ScoreFields(valid, res.Provider, utterance)
	accepted := domain.ExtractedFields{}
	for _, f := range valid.Keys() {
		if validator.ShouldAccept(confidence[string(f)].Score) {
			accepted.Set(f, valid.Get(f))
		} else {
			logger.Debug(ctx, "form: low confidence value dropped", "field", f, "score", confidence[string(f)].Score)
		}
	}

	var completedNow bool
	state, err := s.Sessions.Update(ctx, sessionID, func(st *domain.FormState) error {
		wasComplete := st.IsComplete()
		st.Merge(accepted)
		completedNow = !wasComplete && st.IsComplete()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("form.apply: %w", err)
	}

	if completedNow {
		s.complete(ctx, state, res.Provider)
	}
	s.learn(ctx, utterance, res, accepted)

	out := domain.NewFormResult(state, resultMessage(state, accepted))
	out.Provider = res.Provider
	out.Transcript = res.Transcript
	out.Extracted = accepted.Strings()
	out.Confidence = confidence
	out.Attempts = res.Attempts
	return out, nil
}

func resultMessage(state *domain.FormState, extracted domain.ExtractedFields) string {
	if state.IsComplete() {
		return state.MissingMessage()
	}
	if extracted.Len() == 0 {
		return nothingFoundPrefix + state.MissingMessage()
	}
	return thanksPrefix + state.MissingMessage()
}

// complete records the submission and sends the confirmation. Failures are logged only.
func (s *formService) complete(ctx context.Context, state *domain.FormState, provider string) {
	sub := domain.NewSubmission(state, provider)
	s.Metrics.RecordFormCompleted(ctx, provider)
	logger.Info(ctx, "form: completed", "submission_id", sub.ID, "provider", provider)

	if s.Submissions != nil {
		if err := s.Submissions.Create(ctx, sub); err != nil {
			logger.Error(ctx, "form: saving submission failed", "error", err)
			return
		}
	}
	if s.Email != nil {
		if err := s.Email.SendConfirmation(ctx, sub); err != nil {
			logger.Warn(ctx, "form: confirmation email failed", "error", err)
		}
	}
}

// learn feeds the raw provider values back into the pattern cache.
func (s *formService) learn(ctx context.Context, utterance string, res *extractor.ChainResult, accepted domain.ExtractedFields) {
	if s.Learner == nil || utterance == "" || accepted.Len() == 0 {
		return
	}
	raw := domain.ExtractedFields{}
	for _, f := range accepted.Keys() {
		raw.Set(f, res.Fields.Get(f))
	}
	s.Learner.Learn(ctx, utterance, raw, res.Provider)
}

func (s *formService) GetForm(ctx context.Context, sessionID string) (*domain.ProcessResult, error) {
	state, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("form.GetForm: %w", err)
	}
	return domain.NewFormResult(state, ""), nil
}

func (s *formService) Reset(ctx context.Context, sessionID string) (*domain.ProcessResult, error) {
	state, err := s.Sessions.Reset(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("form.Reset: %w", err)
	}
	logger.Info(ctx, "form: reset", "session_id", sessionID)
	return domain.NewFormResult(state, "Form cleared. "+state.MissingMessage()), nil
}

func (s *formService) ProviderStatus(ctx context.Context) (*domain.StatusReport, error) {
	report := &domain.StatusReport{}
	for _, c := range []*extractor.Chain{s.TextChain, s.AudioChain} {
		if c != nil {
			report.Providers = append(report.Providers, c.Status(ctx)...)
		}
	}
	if s.Learner != nil {
		stats := s.Learner.Stats()
		report.Cache = &stats
	}
	return report, nil
}

// ClearCache drops every learned template. Without a cache it reports ErrNotFound.
func (s *formService) ClearCache(ctx context.Context) (*domain.CacheStats, error) {
	if s.Learner == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.Learner.Clear(); err != nil {
		return nil, fmt.Errorf("form.ClearCache: %w", err)
	}
	stats := s.Learner.Stats()
	logger.Info(ctx, "form: pattern cache cleared")
	return &stats, nil
}

func (s *formService) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	if s.Submissions == nil {
		return []domain.Submission{}, 0, nil
	}
	subs, total, err := s.Submissions.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("form.ListSubmissions: %w", err)
	}
	return subs, total, nil
}

func (s *formService) Ping(ctx context.Context) error {
	return s.Sessions.Store().Ping(ctx)
}

func selectChain(chain *extractor.Chain, backend string) (*extractor.Chain, error) {
	if chain == nil {
		return nil, errors.New("extraction chain not configured")
	}
	if backend == "" {
		return chain, nil
	}
	return chain.Only(backend)
}
