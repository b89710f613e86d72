package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stormlab/shipsdb/internal/observability"
	"github.com/stormlab/shipsdb/internal/storage"
	"github.com/stormlab/shipsdb/pkg/types"
)

// cacheSize bounds the number of whole-storm results kept in memory. A
// season rarely exceeds a few dozen storms per basin.
const cacheSize = 256

// Querier answers storm observation queries against one diagnostics table.
type Querier struct {
	store   *storage.Store
	table   string
	metrics *observability.Metrics
	logger  *slog.Logger
	cache   *lru.Cache[string, *types.StormObs]
}

// NewQuerier creates a Querier for the given table. A nil logger discards
// output.
func NewQuerier(store *storage.Store, table string, metrics *observability.Metrics, logger *slog.Logger) *Querier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cache, err := lru.New[string, *types.StormObs](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(fmt.Sprintf("create storm cache: %v", err))
	}
	return &Querier{store: store, table: table, metrics: metrics, logger: logger, cache: cache}
}

// FetchAll returns every stored observation for a storm, in time order,
// with values converted to physical units. A storm with no rows yields an
// empty result, not an error; storage.ErrNoTable surfaces when nothing has
// been ingested yet.
func (q *Querier) FetchAll(ctx context.Context, atcfID string) (*types.StormObs, error) {
	start := time.Now()
	defer func() { q.metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	if obs, ok := q.cache.Get(atcfID); ok {
		q.metrics.QueryCache.WithLabelValues("hit").Inc()
		return obs, nil
	}
	q.metrics.QueryCache.WithLabelValues("miss").Inc()

	params, rows, err := q.store.FetchStorm(ctx, q.table, atcfID, nil)
	if err != nil {
		return nil, err
	}

	obs := &types.StormObs{
		ATCFID: atcfID,
		Times:  make([]time.Time, 0, len(rows)),
		Params: make(map[string][]types.Datum, len(params)),
	}
	for _, p := range params {
		obs.Params[p] = make([]types.Datum, 0, len(rows))
	}
	for _, row := range rows {
		obs.Times = append(obs.Times, row.Time)
		for i, p := range params {
			obs.Params[p] = append(obs.Params[p], Convert(p, row.Values[i]))
		}
	}

	q.cache.Add(atcfID, obs)
	q.logger.Debug("fetched storm", "atcf_id", atcfID, "rows", len(rows))
	return obs, nil
}

// FetchAt returns the single observation for a storm at an exact
// timestamp. The boolean is false when the storm has no row at that time.
func (q *Querier) FetchAt(ctx context.Context, atcfID string, at time.Time) (*types.Obs, bool, error) {
	start := time.Now()
	defer func() { q.metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	params, rows, err := q.store.FetchStorm(ctx, q.table, atcfID, &at)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	obs := &types.Obs{
		ATCFID: atcfID,
		Time:   rows[0].Time,
		Params: make(map[string]types.Datum, len(params)),
	}
	for i, p := range params {
		obs.Params[p] = Convert(p, rows[0].Values[i])
	}
	return obs, true, nil
}

// Reset drops all cached results. Call after re-ingesting, since cached
// storms may no longer match the table contents.
func (q *Querier) Reset() {
	q.cache.Purge()
}
