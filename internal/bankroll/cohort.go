package bankroll

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/engine"
)

// CohortParams configures a population of independent sessions.
type CohortParams struct {
	Sessions       int
	Games          int
	Bet            decimal.Decimal
	InitialCapital decimal.Decimal
	Wager          WagerType
	Seed           uint64
	Workers        int // 0 = GOMAXPROCS
	Catalog        *catalog.Catalog
	// OnProgress, if set, is called from worker goroutines once per
	// finished session.
	OnProgress func()
}

func (p CohortParams) session() SessionParams {
	return SessionParams{
		InitialCapital: p.InitialCapital,
		Bet:            p.Bet,
		MaxGames:       p.Games,
		Wager:          p.Wager,
		Catalog:        p.Catalog,
	}
}

// Cohort is the result of RunCohort. OverallRTP is total won over total
// staked across every session.
type Cohort struct {
	OverallRTP       float64         `json:"overall_rtp"`
	NumSessions      int             `json:"num_sessions"`
	NumGames         int             `json:"num_games"`
	BetAmount        decimal.Decimal `json:"bet_amount"`
	InitialCapital   decimal.Decimal `json:"initial_capital"`
	WagerType        WagerType       `json:"wager_type"`
	Seed             uint64          `json:"seed"`
	TotalStaked      decimal.Decimal `json:"total_staked"`
	TotalWon         decimal.Decimal `json:"total_won"`
	BankruptSessions int             `json:"bankrupt_sessions"`
	Results          []*Session      `json:"results"`
	Series           []SeriesPoint   `json:"series"`
}

// RunCohort plays Sessions sessions concurrently. Session i draws from
// engine.NewSeededSource(Seed, i), so the cohort is reproducible for a seed
// whatever the worker count.
func RunCohort(ctx context.Context, p CohortParams) (*Cohort, error) {
	if p.Sessions < 0 {
		return nil, fmt.Errorf("%w: session count %d is negative", ErrInvalidParams, p.Sessions)
	}
	sp := p.session()
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if sp.Catalog == nil {
		sp.Catalog = catalog.Default()
	}
	wager, _ := ParseWagerType(string(p.Wager))
	if _, err := sp.Catalog.FixedMultiplier(wager.CatalogID()); err != nil {
		return nil, err
	}

	results := make([]*Session, p.Sessions)
	errs := make([]error, p.Sessions)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, p.Sessions))

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case i, ok := <-jobs:
					if !ok {
						return
					}
					results[i], errs[i] = RunSession(engine.NewSeededSource(p.Seed, uint64(i)), sp)
					if p.OnProgress != nil {
						p.OnProgress()
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < p.Sessions; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	for i, s := range results {
		if errs[i] != nil {
			return nil, fmt.Errorf("session %d: %w", i, errs[i])
		}
		if s == nil {
			return nil, fmt.Errorf("cohort cancelled at session %d: %w", i, ctx.Err())
		}
	}

	c := &Cohort{
		NumSessions:    p.Sessions,
		NumGames:       p.Games,
		BetAmount:      p.Bet,
		InitialCapital: p.InitialCapital,
		WagerType:      wager,
		Seed:           p.Seed,
		TotalStaked:    decimal.Zero,
		TotalWon:       decimal.Zero,
		Results:        results,
	}
	for _, s := range results {
		c.TotalStaked = c.TotalStaked.Add(s.TotalStaked)
		c.TotalWon = c.TotalWon.Add(s.TotalWon)
		if s.Terminal == TerminalBankrupt {
			c.BankruptSessions++
		}
	}
	c.OverallRTP = rtp(c.TotalWon, c.TotalStaked)
	c.Series = BuildSeries(results)
	return c, nil
}
