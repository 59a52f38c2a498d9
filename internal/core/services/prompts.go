package services

import (
	"fmt"
	"strings"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// draftSystemPrompt is shared by every drafting template.
const draftSystemPrompt = "You are an experienced legal drafter. Produce complete, " +
	"well-structured documents in plain language. Ground the draft in the " +
	"reference passages when they are relevant; never invent citations."

// templateBody returns the structural requirements for a document type.
// Unrecognised types already normalise to generic before this is called.
func templateBody(docType domain.DocumentType) string {
	switch docType {
	case domain.DocumentTypeAgreement:
		return "Draft a formal agreement with: title; date and place of execution; " +
			"full description of the parties; recitals; numbered operative clauses " +
			"covering consideration, obligations, term, termination and dispute " +
			"resolution; governing law; and signature blocks with witness lines."
	case domain.DocumentTypeNotice:
		return "Draft a formal legal notice with: sender and addressee details; " +
			"subject line; a chronological statement of facts; the legal basis for " +
			"the demand; the specific demand with a compliance deadline; and the " +
			"consequences of non-compliance."
	case domain.DocumentTypePetition:
		return "Draft a petition with: court heading and jurisdiction; cause title; " +
			"numbered paragraphs stating the facts; grounds; the relief sought as a " +
			"prayer clause; and a verification block."
	case domain.DocumentTypeAffidavit:
		return "Draft an affidavit with: deponent identification; numbered " +
			"paragraphs of sworn statements in the first person; a verification " +
			"clause; and an attestation block for the oath commissioner."
	default:
		return "Draft a complete legal document with a clear title, structured " +
			"numbered sections, defined parties and signature blocks appropriate " +
			"to the instruction."
	}
}

// buildDraftPrompt combines the template, retrieved context and request
// details into a single system+user prompt.
func buildDraftPrompt(req *domain.GenerationRequest, contextBlock string) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", templateBody(req.DocumentType.Normalise()))
	fmt.Fprintf(&b, "Reference passages:\n%s\n\n", contextBlock)
	fmt.Fprintf(&b, "Instruction: %s\n", req.Instruction)

	if len(req.Parties) > 0 {
		fmt.Fprintf(&b, "Parties: %s\n", strings.Join(req.Parties, "; "))
	}
	if req.JurisdictionHint != "" {
		fmt.Fprintf(&b, "Jurisdiction: %s\n", req.JurisdictionHint)
	}
	if len(req.RequiredClauses) > 0 {
		fmt.Fprintf(&b, "Required clauses, in this order: %s\n", strings.Join(req.RequiredClauses, ", "))
	}

	tone := req.Tone
	if tone == "" {
		tone = domain.ToneFormal
	}
	fmt.Fprintf(&b, "Tone: %s\n", tone)

	return draftSystemPrompt, b.String()
}

const refineSystemPrompt = "You are an experienced legal drafter revising an " +
	"existing document. Apply the requested changes precisely and return the " +
	"full revised document, nothing else."

func buildRefinePrompt(original, instructions string) (system, user string) {
	return refineSystemPrompt, fmt.Sprintf(
		"Revise the following document.\n\nInstructions: %s\n\nDocument:\n%s",
		instructions, original,
	)
}

const compareSystemPrompt = "You are a legal reviewer. Compare documents " +
	"clause by clause, flagging additions, deletions and substantive changes " +
	"in obligations, amounts, dates and parties."

func buildComparePrompt(a, b string) (system, user string) {
	return compareSystemPrompt, fmt.Sprintf(
		"Compare these two documents and summarise the material differences.\n\n"+
			"Document A:\n%s\n\nDocument B:\n%s",
		a, b,
	)
}

const sectionsSystemPrompt = "You extract document structure. Respond with a " +
	"single flat JSON object mapping each section heading to its full text. " +
	"No markdown, no commentary."

func buildSectionsPrompt(text string) (system, user string) {
	return sectionsSystemPrompt, fmt.Sprintf(
		"Extract the named sections of this document as JSON:\n\n%s", text,
	)
}

const suggestionsSystemPrompt = "You review legal drafts. Respond with a " +
	"numbered list of at most five specific, actionable improvements. One " +
	"suggestion per line, no preamble."

func buildSuggestionsPrompt(text string) (system, user string) {
	return suggestionsSystemPrompt, fmt.Sprintf(
		"Suggest improvements for this draft:\n\n%s", text,
	)
}

// genericSuggestions is returned when the suggestion call fails or parses
// to nothing. Callers always receive a non-empty, bounded list.
var genericSuggestions = []string{
	"Verify that all party names, dates and amounts are stated consistently throughout the document.",
	"Confirm the governing law and jurisdiction clause matches the parties' intent.",
	"Add or review the dispute resolution clause, including escalation steps.",
	"Check that defined terms are capitalised and used consistently.",
	"Have the draft reviewed by a qualified practitioner in the relevant jurisdiction.",
}

// fallbackDraft is the fixed skeleton served when no generation capability
// is configured. Clearly labelled so it is never mistaken for model output.
func fallbackDraft(req *domain.GenerationRequest) string {
	docType := req.DocumentType.Normalise()

	var b strings.Builder
	b.WriteString("[DRAFT SKELETON - generation service not configured]\n\n")
	fmt.Fprintf(&b, "DOCUMENT TYPE: %s\n", strings.ToUpper(string(docType)))
	fmt.Fprintf(&b, "INSTRUCTION: %s\n\n", req.Instruction)

	if len(req.Parties) > 0 {
		fmt.Fprintf(&b, "PARTIES:\n")
		for i, p := range req.Parties {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}

	b.WriteString("STRUCTURE:\n")
	for i, section := range fallbackSections(docType) {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, section)
	}

	b.WriteString("\nComplete each section manually or configure a generation provider.\n")
	return b.String()
}

func fallbackSections(docType domain.DocumentType) []string {
	switch docType {
	case domain.DocumentTypeAgreement:
		return []string{"Title and Date", "Parties", "Recitals", "Consideration", "Obligations", "Term and Termination", "Dispute Resolution", "Governing Law", "Signatures"}
	case domain.DocumentTypeNotice:
		return []string{"Sender and Addressee", "Subject", "Statement of Facts", "Legal Basis", "Demand and Deadline", "Consequences of Non-Compliance"}
	case domain.DocumentTypePetition:
		return []string{"Court Heading", "Cause Title", "Facts", "Grounds", "Prayer", "Verification"}
	case domain.DocumentTypeAffidavit:
		return []string{"Deponent Details", "Sworn Statements", "Verification", "Attestation"}
	default:
		return []string{"Title", "Parties", "Body", "Closing", "Signatures"}
	}
}
