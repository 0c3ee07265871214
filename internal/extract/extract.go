// Package extract provides the built-in heuristic facet extractors. They
// match marker phrases per facet against segment sentences, which is enough
// to run the engine end-to-end without a model backend; deployments swap in
// LLM-backed extractors behind the same contract.
package extract

import (
	"context"
	"strings"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/processor"
)

// #region markers

var howMarkers = []string{
	"works by", "leads to", "results in", "step by step", "the process",
	"mechanism", "causes", "is done by", "proceeds", "converts",
	"in three steps", "first,", "then the", "finally",
}

var whatMarkers = []string{
	"is defined as", "is called", "refers to", "means that", "is known as",
	"definition", "denotes", "is a kind of", "is a type of", "we call",
	"that is,", "in other words",
}

var whenMarkers = []string{
	"in the year", "century", "during", "after the", "before the",
	"at the time", "era", "period", "decade", "originally", "historically",
	"until", "since",
}

var whereMarkers = []string{
	"in the field of", "applies to", "domain", "region", "within the",
	"in europe", "in asia", "in america", "in the lab", "geographically",
	"locally", "in this context", "holds for",
}

var whoMarkers = []string{
	"discovered by", "proposed by", "according to", "argued that",
	"introduced by", "founded", "the author", "the researcher",
	"scholars", "scientists", "philosopher", "professor", "et al",
}

var whyMarkers = []string{
	"because", "in order to", "the reason", "therefore", "this explains",
	"motivated by", "so that", "which is why", "justifies", "follows from",
	"implies", "consequently",
}

var markers = [facet.Count][]string{howMarkers, whatMarkers, whenMarkers, whereMarkers, whoMarkers, whyMarkers}

// #endregion markers

// #region set

// maxSnippetsPerCall bounds how many sentences one extraction yields so a
// marker-dense segment cannot flood the evidence list in a single pass.
const maxSnippetsPerCall = 2

// DefaultSet returns the heuristic extractor for every facet.
func DefaultSet() processor.ExtractorSet {
	var set processor.ExtractorSet
	for _, f := range facet.All() {
		f := f
		set[f] = func(text string, ev facet.Evidence) ([]string, error) {
			return matchSentences(text, markers[f], ev), nil
		}
	}
	return set
}

// ContextSet wraps DefaultSet in the awaitable contract.
func ContextSet() processor.ContextExtractorSet {
	var out processor.ContextExtractorSet
	for i, ext := range DefaultSet() {
		ext := ext
		out[i] = func(_ context.Context, text string, ev facet.Evidence) ([]string, error) {
			return ext(text, ev)
		}
	}
	return out
}

// #endregion set

// #region matching

// matchSentences returns segment sentences containing any marker phrase,
// skipping sentences already stored as snippets.
func matchSentences(text string, phrases []string, ev facet.Evidence) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		if known(ev, sentence) {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				out = append(out, sentence)
				break
			}
		}
		if len(out) == maxSnippetsPerCall {
			break
		}
	}
	return out
}

func known(ev facet.Evidence, sentence string) bool {
	for _, s := range ev.Snippets {
		if s == sentence {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// #endregion matching
