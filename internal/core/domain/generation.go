package domain

import (
	"fmt"
	"strings"
	"time"
)

// MinInstructionLength is the minimum length of a drafting instruction.
// Anything shorter is rejected as invalid input.
const MinInstructionLength = 10

// MaxImprovementSuggestions caps the advisory suggestion list.
const MaxImprovementSuggestions = 5

// DocumentType selects the prompt template for a draft.
type DocumentType string

const (
	DocumentTypeAgreement DocumentType = "agreement"
	DocumentTypeNotice    DocumentType = "notice"
	DocumentTypePetition  DocumentType = "petition"
	DocumentTypeAffidavit DocumentType = "affidavit"
	DocumentTypeGeneric   DocumentType = "generic"
)

// Normalise maps unknown or empty document types to the generic template.
func (d DocumentType) Normalise() DocumentType {
	switch d {
	case DocumentTypeAgreement, DocumentTypeNotice, DocumentTypePetition, DocumentTypeAffidavit:
		return d
	default:
		return DocumentTypeGeneric
	}
}

// Tone adjusts the drafting voice.
type Tone string

const (
	ToneFormal     Tone = "formal"
	TonePersuasive Tone = "persuasive"
	ToneNeutral    Tone = "neutral"
)

// IsValid reports whether the tone is one of the known values.
func (t Tone) IsValid() bool {
	switch t {
	case ToneFormal, TonePersuasive, ToneNeutral:
		return true
	default:
		return false
	}
}

// GenerationRequest describes a drafting task.
type GenerationRequest struct {
	Instruction      string       `json:"instruction"`
	DocumentType     DocumentType `json:"document_type,omitempty"`
	Parties          []string     `json:"parties,omitempty"`
	JurisdictionHint string       `json:"jurisdiction_hint,omitempty"`
	RequiredClauses  []string     `json:"required_clauses,omitempty"`
	Tone             Tone         `json:"tone,omitempty"`
}

// Validate checks the request before any retrieval or generation work.
func (r *GenerationRequest) Validate() error {
	if len(strings.TrimSpace(r.Instruction)) < MinInstructionLength {
		return fmt.Errorf("%w: instruction must be at least %d characters", ErrInvalidInput, MinInstructionLength)
	}
	if r.Tone != "" && !r.Tone.IsValid() {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidInput, r.Tone)
	}
	return nil
}

// RetrievalQuery builds the query used to ground the draft: the instruction
// plus party and jurisdiction hints when present.
func (r *GenerationRequest) RetrievalQuery() string {
	parts := []string{r.Instruction}
	if len(r.Parties) > 0 {
		parts = append(parts, strings.Join(r.Parties, " "))
	}
	if r.JurisdictionHint != "" {
		parts = append(parts, r.JurisdictionHint)
	}
	return strings.Join(parts, " ")
}

// Reference ties a generated draft back to a retrieval result that fed its
// prompt.
type Reference struct {
	SourceID       string  `json:"source_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Excerpt        string  `json:"excerpt"`
}

// GenerationResult is a produced draft with its provenance.
type GenerationResult struct {
	ID                     string        `json:"id"`
	Text                   string        `json:"text"`
	GeneratedAt            time.Time     `json:"generated_at"`
	ModelIdentifier        string        `json:"model_identifier"`
	TokenCount             int           `json:"token_count,omitempty"`
	ProcessingDuration     time.Duration `json:"processing_duration" swaggertype:"integer"`
	References             []Reference   `json:"references"`
	ImprovementSuggestions []string      `json:"improvement_suggestions,omitempty"`

	// Degraded marks drafts produced by the fixed fallback template when
	// no generation capability is configured.
	Degraded bool `json:"degraded,omitempty"`
}

// SectionMap is the advisory structure extracted from a draft: section name
// to section text. Empty when extraction fails.
type SectionMap map[string]string
