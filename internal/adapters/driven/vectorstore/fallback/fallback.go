// Package fallback serves retrieval from a small built-in corpus of
// drafting boilerplate when the live embedding + vector store path is
// unavailable. Matching is naive substring scoring, deliberately simple:
// the point is a deterministic, clearly-flagged answer, not relevance.
package fallback

import (
	"sort"
	"strings"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Ensure Retriever implements FallbackRetriever
var _ driven.FallbackRetriever = (*Retriever)(nil)

// Retriever matches queries against the built-in corpus.
type Retriever struct {
	corpus []entry
}

type entry struct {
	id       string
	sourceID string
	text     string
	tags     domain.Tags
}

// New creates a fallback retriever over the built-in corpus.
func New() *Retriever {
	return &Retriever{corpus: builtinCorpus}
}

// Search returns up to topK corpus entries sharing words with the query,
// scored by word overlap. Scores are capped well below 1 so degraded
// results never look like strong matches.
func (r *Retriever) Search(query string, topK int) []*domain.RetrievalResult {
	if topK <= 0 {
		topK = 5
	}

	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}

	var results []*domain.RetrievalResult
	for _, e := range r.corpus {
		lower := strings.ToLower(e.text)
		matched := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		results = append(results, &domain.RetrievalResult{
			ID:       e.id,
			SourceID: e.sourceID,
			Text:     e.text,
			Score:    0.5 * float64(matched) / float64(len(words)),
			Tags:     e.tags.Clone(),
			Degraded: true,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// queryWords lowercases and splits the query, dropping short noise words.
func queryWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

// builtinCorpus is a fixed set of drafting boilerplate passages. IDs are
// stable so repeated degraded queries return identical results.
var builtinCorpus = []entry{
	{
		id:       "builtin-agreement-structure",
		sourceID: "builtin/agreement-structure",
		text: "A well-formed agreement opens with the title, date and place of execution, " +
			"followed by a full description of the parties with their addresses. Recitals " +
			"explain the background. The operative part carries numbered clauses covering " +
			"consideration, mutual obligations, term, termination and consequences of breach, " +
			"followed by governing law and signature blocks attested by witnesses.",
		tags: domain.Tags{domain.TagDraftType: "agreement"},
	},
	{
		id:       "builtin-lease-essentials",
		sourceID: "builtin/lease-essentials",
		text: "A lease or rental agreement should state the demised premises precisely, the " +
			"monthly rent and its due date, the security deposit and the conditions of its " +
			"refund, the lock-in period, maintenance responsibilities, and the notice period " +
			"required of either party to terminate the tenancy.",
		tags: domain.Tags{domain.TagDraftType: "agreement", domain.TagCategory: "leases"},
	},
	{
		id:       "builtin-notice-structure",
		sourceID: "builtin/notice-structure",
		text: "A legal notice identifies the sender and the addressee, states the facts in " +
			"chronological order, sets out the legal basis of the grievance, makes a specific " +
			"demand with a deadline for compliance, and warns of the action that follows " +
			"non-compliance. It is dated and sent by a verifiable mode of delivery.",
		tags: domain.Tags{domain.TagDraftType: "notice"},
	},
	{
		id:       "builtin-petition-structure",
		sourceID: "builtin/petition-structure",
		text: "A petition carries the court heading and jurisdiction, the cause title naming " +
			"the parties, numbered paragraphs stating the material facts, the grounds relied " +
			"upon, the relief sought in a prayer clause, and a verification by the petitioner " +
			"affirming the truth of the contents.",
		tags: domain.Tags{domain.TagDraftType: "petition"},
	},
	{
		id:       "builtin-affidavit-structure",
		sourceID: "builtin/affidavit-structure",
		text: "An affidavit identifies the deponent with age, occupation and address, states " +
			"the sworn facts in numbered first-person paragraphs, distinguishes statements " +
			"made on knowledge from those on belief, and closes with a verification clause " +
			"and the attestation of the oath commissioner.",
		tags: domain.Tags{domain.TagDraftType: "affidavit"},
	},
	{
		id:       "builtin-termination-clause",
		sourceID: "builtin/termination-clause",
		text: "A termination clause states the notice period, the form the notice must take, " +
			"the grounds permitting immediate termination, and the obligations that survive " +
			"termination such as confidentiality, settlement of dues and return of property.",
		tags: domain.Tags{domain.TagCategory: "clauses"},
	},
	{
		id:       "builtin-dispute-resolution",
		sourceID: "builtin/dispute-resolution",
		text: "A dispute resolution clause names the escalation steps: good-faith negotiation, " +
			"then mediation or arbitration with the seat, language and governing rules stated, " +
			"and finally the courts with exclusive jurisdiction.",
		tags: domain.Tags{domain.TagCategory: "clauses"},
	},
	{
		id:       "builtin-indemnity-clause",
		sourceID: "builtin/indemnity-clause",
		text: "An indemnity clause names the indemnifying party, the losses covered, the " +
			"exclusions, any monetary cap, and the procedure for claiming: prompt notice, " +
			"conduct of defence and the duty to mitigate.",
		tags: domain.Tags{domain.TagCategory: "clauses"},
	},
}
