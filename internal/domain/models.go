package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderResult is the outcome of a single provider attempt within one chain run.
type ProviderResult struct {
	Provider   string          `json:"provider"`
	Status     AttemptStatus   `json:"status"`
	Fields     ExtractedFields `json:"-"`
	Detail     string          `json:"detail,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// FieldConfidence scores one extracted value.
type FieldConfidence struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// ProcessResult is the outbound shape returned for every extraction request.
type ProcessResult struct {
	Success              bool                       `json:"success"`
	Fields               map[string]string          `json:"fields"`
	Missing              []string                   `json:"missing"`
	Complete             bool                       `json:"complete"`
	Message              string                     `json:"message"`
	CompletionPercentage float64                    `json:"completion_percentage"`
	Provider             string                     `json:"provider,omitempty"`
	Transcript           string                     `json:"transcript,omitempty"`
	Extracted            map[string]string          `json:"extracted,omitempty"`
	Confidence           map[string]FieldConfidence `json:"confidence,omitempty"`
	Attempts             []ProviderResult           `json:"attempts,omitempty"`
	Diagnostic           string                     `json:"diagnostic,omitempty"`
}

// NewFormResult renders a FormState in the outbound shape with no extraction metadata.
func NewFormResult(state *FormState, message string) *ProcessResult {
	if message == "" {
		message = state.MissingMessage()
	}
	return &ProcessResult{
		Success:              true,
		Fields:               state.Fields().Strings(),
		Missing:              FieldNames(state.MissingFields()),
		Complete:             state.IsComplete(),
		Message:              message,
		CompletionPercentage: state.CompletionPercentage(),
	}
}

// ProviderStatus is the availability of one configured provider.
type ProviderStatus struct {
	Name      string    `json:"name"`
	Chain     InputKind `json:"chain"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
	OpenUntil time.Time `json:"circuit_open_until,omitempty"`
}

// CacheStats summarises the learned-pattern cache.
type CacheStats struct {
	Patterns int `json:"patterns"`
	Hits     int `json:"hits"`
	Misses   int `json:"misses"`
}

// StatusReport is the read-only health view of extraction providers.
type StatusReport struct {
	Providers []ProviderStatus `json:"providers"`
	Cache     *CacheStats      `json:"cache,omitempty"`
}

// Submission is a completed form, recorded once per completion.
type Submission struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Provider  string    `db:"provider" json:"provider"`
	CreatedAt time.Time `db:"-" json:"created_at"`
}

// NewSubmission snapshots a complete form.
func NewSubmission(state *FormState, provider string) *Submission {
	return &Submission{
		ID:        uuid.New(),
		SessionID: state.SessionID,
		Name:      state.Get(FieldFullName),
		Email:     state.Get(FieldEmail),
		Phone:     state.Get(FieldPhone),
		Address:   state.Get(FieldAddress),
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
	}
}
