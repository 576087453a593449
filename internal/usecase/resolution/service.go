// Package resolution drives one citation from noisy mention to typed match:
// expand queries, search both catalog families in parallel, rank and cap each
// pool, arbitrate per source, then aggregate the pair of outcomes, retrying
// with broadened queries up to a bound.
package resolution

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain/query"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/metrics"
)

const (
	// maxRetries bounds re-entry into query generation after a total miss.
	maxRetries = 3
	// perQueryLimit is the per-search candidate fetch size.
	perQueryLimit = 5
	// maxCandidates caps the ranked pool handed to the arbiter per source.
	maxCandidates = 5
)

// Service is the resolution orchestrator. It owns no per-citation state
// between calls; all orchestration state lives on the stack of one Resolve.
type Service struct {
	books   BookSearcher
	authors AuthorSearcher
	people  PersonSearcher
	arbiter Arbiter

	aliases query.AliasTable
	logger  *zap.Logger
	timeout time.Duration
	sem     chan struct{}
}

// New creates a resolution service over the three catalog adapters and an
// arbiter.
func New(books BookSearcher, authors AuthorSearcher, people PersonSearcher, arbiter Arbiter) *Service {
	return &Service{
		books:   books,
		authors: authors,
		people:  people,
		arbiter: arbiter,
		logger:  zap.NewNop(),
	}
}

// WithAliasTable attaches the author alias table used by query expansion.
func (s *Service) WithAliasTable(t query.AliasTable) *Service {
	s.aliases = t
	return s
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithTimeout bounds one whole resolution; on expiry the citation yields
// not_found with a timeout reason.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// WithMaxConcurrent bounds simultaneously in-flight resolutions process-wide
// (the arbiter is usually the scarcest resource).
func (s *Service) WithMaxConcurrent(n int) *Service {
	if n > 0 {
		s.sem = make(chan struct{}, n)
	}
	return s
}

// state is the tagged union the control loop advances through. Each state
// carries exactly the data the next step needs.
type state interface{ isState() }

type generateState struct {
	attempt int
}

type searchState struct {
	attempt int
	queries []domain.SearchQuery
}

type aggregateState struct {
	attempt int
	primary domain.ArbitrationOutcome // book-catalog family
	person  domain.ArbitrationOutcome // person-catalog family
}

type doneState struct {
	result domain.Result
}

func (generateState) isState()  {}
func (searchState) isState()    {}
func (aggregateState) isState() {}
func (doneState) isState()      {}

// Resolve runs the state machine for one citation. The returned error is
// non-nil only for caller mistakes or cancellation before work started;
// every resolution failure degrades to a well-formed not_found result.
func (s *Service) Resolve(ctx context.Context, citation domain.Citation) (domain.Result, error) {
	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
		case <-ctx.Done():
			return domain.Result{}, ctx.Err()
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	mode := citation.Mode()
	log := s.logger.With(
		zap.String("mode", string(mode)),
		zap.String("title", citation.Title),
		zap.String("author", citation.Author),
	)

	var st state = generateState{attempt: 0}
	for {
		if err := ctx.Err(); err != nil {
			result := domain.NotFound("resolution timed out: " + err.Error())
			metrics.ResolutionsTotal.WithLabelValues(string(mode), string(result.MatchType)).Inc()
			return result, nil
		}

		switch cur := st.(type) {
		case generateState:
			if citation.IsEmpty() {
				st = doneState{result: domain.NotFound("citation has neither title nor author")}
				continue
			}
			queries := query.Expand(citation, s.aliases, cur.attempt > 0)
			log.Debug("queries generated",
				zap.Int("attempt", cur.attempt),
				zap.Int("count", len(queries)),
			)
			st = searchState{attempt: cur.attempt, queries: queries}

		case searchState:
			primary, person := s.searchAndValidate(ctx, log, citation, mode, cur.queries)
			st = aggregateState{attempt: cur.attempt, primary: primary, person: person}

		case aggregateState:
			result, ok := aggregate(mode, cur.primary, cur.person)
			if ok {
				st = doneState{result: result}
				continue
			}
			if cur.attempt >= maxRetries {
				st = doneState{result: domain.NotFound(domain.ReasonMaxRetries)}
				continue
			}
			metrics.ResolutionRetriesTotal.Inc()
			log.Debug("no source selected, retrying", zap.Int("attempt", cur.attempt+1))
			st = generateState{attempt: cur.attempt + 1}

		case doneState:
			metrics.ResolutionsTotal.WithLabelValues(string(mode), string(cur.result.MatchType)).Inc()
			log.Info("resolution finished",
				zap.String("match_type", string(cur.result.MatchType)),
			)
			return cur.result, nil
		}
	}
}

// searchAndValidate fans out to the two applicable source branches, each
// running search → rank/cap → arbitration, and joins on both outcomes.
// Aggregate never observes a partial pair.
func (s *Service) searchAndValidate(
	ctx context.Context, log *zap.Logger,
	citation domain.Citation, mode domain.Mode, queries []domain.SearchQuery,
) (primary, person domain.ArbitrationOutcome) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		pool := s.searchPersons(ctx, log, queries)
		pool = capPool(pool, personReference(citation, queries))
		person = s.validate(ctx, log, citation, domain.SourcePersonCatalog, pool)
	}()

	var pool []domain.Candidate
	if mode == domain.ModeBook {
		pool = s.searchBooks(ctx, log, queries)
		pool = capPool(pool, bookReference(citation, queries))
	} else {
		pool = s.searchAuthors(ctx, log, queries)
		pool = capPool(pool, personReference(citation, queries))
	}
	primary = s.validate(ctx, log, citation, domain.SourceBookCatalog, pool)

	<-done
	return primary, person
}

// validate hands one source's capped pool to the arbiter. An empty pool
// short-circuits; any arbiter failure degrades to "no selection".
func (s *Service) validate(
	ctx context.Context, log *zap.Logger,
	citation domain.Citation, source domain.Source, pool []domain.Candidate,
) domain.ArbitrationOutcome {
	outcome := domain.ArbitrationOutcome{Source: source}
	if len(pool) == 0 {
		outcome.Reason = "no candidates found"
		return outcome
	}

	idx, reason, err := s.arbiter.Choose(ctx, citation, pool)
	if err != nil {
		log.Warn("arbiter call failed",
			zap.String("source", string(source)),
			zap.Error(err),
		)
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Reason = reason
	if idx >= 0 && idx < len(pool) {
		outcome.Selected = pool[idx]
	}
	return outcome
}

// aggregate applies the decision table. ok=false triggers a retry.
func aggregate(mode domain.Mode, primary, person domain.ArbitrationOutcome) (domain.Result, bool) {
	switch mode {
	case domain.ModeBook:
		if primary.Selected == nil {
			// Never fall back to the person outcome as the primary match.
			return domain.Result{}, false
		}
		result := domain.Result{
			MatchType: domain.MatchBook,
			Metadata:  primary.Selected.Record(),
			Reasoning: primary.Reason,
		}
		attachPerson(&result, person)
		return result, true

	default: // author-only
		if primary.Selected != nil {
			result := domain.Result{
				MatchType: domain.MatchAuthor,
				Metadata:  primary.Selected.Record(),
				Reasoning: primary.Reason,
			}
			attachPerson(&result, person)
			return result, true
		}
		if person.Selected != nil {
			return domain.Result{
				MatchType: domain.MatchPerson,
				Metadata:  person.Selected.Record(),
				Reasoning: person.Reason,
			}, true
		}
		return domain.Result{}, false
	}
}

// attachPerson nests a selected person outcome as an auxiliary biographical
// annotation; it never changes the match type.
func attachPerson(result *domain.Result, person domain.ArbitrationOutcome) {
	if person.Selected != nil {
		result.Metadata[domain.WikipediaMatchKey] = person.Selected.Record()
	}
}
