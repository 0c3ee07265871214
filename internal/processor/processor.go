package processor

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/rotation"
	"github.com/dicelabs/dice-engine/internal/scoring"
)

// #endregion

// #region extractor-contracts

// Extractor is the synchronous per-facet extraction contract: lecture
// segment text plus the facet's current evidence in, snippets out. Backed
// by an LLM call in production; any error is propagated, never swallowed.
type Extractor func(segmentText string, ev facet.Evidence) ([]string, error)

// ContextExtractor is the awaitable contract for extractors that reach
// slow external services. Calls are still strictly sequential within a
// segment; the context only carries cancellation and deadlines.
type ContextExtractor func(ctx context.Context, segmentText string, ev facet.Evidence) ([]string, error)

// ExtractorSet supplies one synchronous extractor per facet. The fixed
// array makes a missing facet a construction mistake rather than a silent
// runtime skip.
type ExtractorSet [facet.Count]Extractor

// ContextExtractorSet supplies one context-aware extractor per facet.
type ContextExtractorSet [facet.Count]ContextExtractor

func (s ExtractorSet) withContext() ContextExtractorSet {
	var out ContextExtractorSet
	for i, ext := range s {
		if ext == nil {
			continue
		}
		ext := ext
		out[i] = func(_ context.Context, text string, ev facet.Evidence) ([]string, error) {
			return ext(text, ev)
		}
	}
	return out
}

func (s ContextExtractorSet) validate() error {
	for i, ext := range s {
		if ext == nil {
			return fmt.Errorf("no extractor supplied for facet %s", facet.Facet(i))
		}
	}
	return nil
}

// #endregion extractor-contracts

// #region segment

// Segment is one pre-segmented slice of lecture text. The index feeds
// deterministic permutation selection, so reprocessing a lecture
// reproduces its scheduling exactly.
type Segment struct {
	Index int
	Text  string
}

// #endregion segment

// #region options

// Options fixes the per-lecture knobs for a processing run.
type Options struct {
	Mode     modes.Mode
	SafeMode bool
	// EmpiricalMix is the hybrid dial recorded with interdisciplinary
	// runs; out-of-range values clamp.
	EmpiricalMix float64
	// Clock overrides time.Now for scoring decay. Nil means wall clock.
	Clock func() time.Time
	// Verbose enables per-pass decision logging.
	Verbose bool
}

func (o Options) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// #endregion options

// #region results

// PassResult records the rotation decision of one extraction pass.
type PassResult struct {
	SegmentIndex int
	Pass         int // 0, or 0/1 for interdisciplinary dual-pass
	Rotation     rotation.Result
	Scores       scoring.Scores
	Weights      modes.Weights
}

// #endregion results

// #region processor-struct

// Processor drives the per-segment extraction loop: score, rotate, run
// extractors in order, fold evidence. One processor may serve many
// threads; all mutable state lives in the ThreadState it is handed.
type Processor struct {
	orch     *rotation.Orchestrator
	resolver *modes.Resolver
}

// New wires a processor over a rotation orchestrator and a mode resolver.
func New(orch *rotation.Orchestrator, resolver *modes.Resolver) *Processor {
	return &Processor{orch: orch, resolver: resolver}
}

// #endregion processor-struct

// #region process

// Process runs the synchronous contract over all segments in index order.
func (p *Processor) Process(state *facet.ThreadState, segments []Segment, set ExtractorSet, opts Options) ([]PassResult, error) {
	for i, ext := range set {
		if ext == nil {
			return nil, fmt.Errorf("no extractor supplied for facet %s", facet.Facet(i))
		}
	}
	return p.run(context.Background(), state, segments, set.withContext(), opts)
}

// ProcessContext runs the awaitable contract. Ordering, scoring, and
// collapse logic are identical to Process; only invocation mechanics
// differ.
func (p *Processor) ProcessContext(ctx context.Context, state *facet.ThreadState, segments []Segment, set ContextExtractorSet, opts Options) ([]PassResult, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}
	return p.run(ctx, state, segments, set, opts)
}

// #endregion process

// #region run

// run is the single core behind both contracts. Extractor calls within a
// segment execute strictly sequentially; evidence folding happens only
// after an extractor returns cleanly, so cancellation or failure leaves
// every completed fold intact and never a partial one.
func (p *Processor) run(ctx context.Context, state *facet.ThreadState, segments []Segment, set ContextExtractorSet, opts Options) ([]PassResult, error) {
	if _, err := modes.ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	passWeights, err := p.passWeights(opts)
	if err != nil {
		return nil, err
	}

	results := make([]PassResult, 0, len(segments)*len(passWeights))

	for _, seg := range segments {
		for pass, weights := range passWeights {
			weights := weights
			now := opts.now()
			scores := scoring.ScoreAll(state, now)

			res := p.orch.Rotate(rotation.Request{
				ThreadID:     state.ThreadID,
				SegmentIndex: seg.Index,
				Scores:       scores,
				Weights:      &weights,
				SafeMode:     opts.SafeMode,
			})

			if opts.Verbose {
				log.Printf("[PROC] thread=%s seg=%d pass=%d trigger=%s order=%v",
					state.ThreadID, seg.Index, pass, res.Trigger, res.Order)
			}

			for _, f := range res.Order {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				snippets, err := set[f](ctx, seg.Text, state.Evidence[f])
				if err != nil {
					return results, fmt.Errorf("extract %s for segment %d: %w", f, seg.Index, err)
				}
				foldTime := opts.now()
				for _, snippet := range snippets {
					state.Apply(f, snippet, foldTime)
				}
			}

			results = append(results, PassResult{
				SegmentIndex: seg.Index,
				Pass:         pass,
				Rotation:     res,
				Scores:       scores,
				Weights:      weights,
			})
		}
	}

	return results, nil
}

// passWeights resolves the weight vector per extraction pass. Most modes
// run one pass; interdisciplinary lectures run two full passes per
// segment, one per hybrid endpoint, sharing the same evidence records so
// the second pass sees the first pass's folds.
func (p *Processor) passWeights(opts Options) ([]modes.Weights, error) {
	if opts.Mode == modes.ModeInterdisciplinary {
		return []modes.Weights{modes.Empirical, modes.Interpretive}, nil
	}
	w, err := p.resolver.Resolve(opts.Mode, opts.EmpiricalMix)
	if err != nil {
		return nil, err
	}
	return []modes.Weights{w}, nil
}

// #endregion run
