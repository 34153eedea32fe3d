package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/adigiz/leadgen/internal/gazetteer"
	"github.com/adigiz/leadgen/internal/model"
	"github.com/adigiz/leadgen/internal/store"
)

// Pipeline sequences the extraction core over one batch of raw records:
// location inference and resolution, then per-record parsing,
// classification, and reconciliation.
type Pipeline struct {
	store      store.Store
	parser     *AddressParser
	engine     *InferenceEngine
	resolver   *LocationResolver
	reconciler *LeadReconciler
}

// New wires the pipeline components for one gazetteer.
func New(st store.Store, gaz *gazetteer.Gazetteer) *Pipeline {
	return &Pipeline{
		store:      st,
		parser:     NewAddressParser(gaz),
		engine:     NewInferenceEngine(gaz),
		resolver:   NewLocationResolver(st, gaz),
		reconciler: NewLeadReconciler(st, gaz),
	}
}

// Result aggregates the outcome of a run. Counters are threaded through
// return values; the pipeline keeps no shared mutable state, so independent
// runs can execute concurrently.
type Result struct {
	Saved      int
	Duplicates int
	Invalid    int
	Failed     int
}

// Run processes one batch of raw records for a category and target. Records
// are processed sequentially in input order. Per-item failures are logged
// and skipped; only a failure before the batch starts (location resolution
// against an unreachable store) aborts the run.
func (p *Pipeline) Run(
	ctx context.Context,
	target model.SearchTarget,
	category model.Category,
	records []model.RawBusinessRecord,
) (Result, error) {
	log := zap.L().With(
		zap.String("target", target.String()),
		zap.String("category", category.Name),
	)
	log.Info("pipeline: starting run", zap.Int("records", len(records)))

	var res Result

	locationID, err := p.targetLocation(ctx, target, records, log)
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		addr := p.parser.Parse(rec.Address)
		cls := ClassifyListing(rec.ReviewCountText)

		outcome, err := p.reconciler.Persist(ctx, rec, addr, cls, locationID, category.ID)
		if err != nil {
			log.Error("pipeline: persist lead failed",
				zap.String("business", rec.BusinessName),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		switch outcome {
		case Saved:
			res.Saved++
		case SkippedDuplicate:
			log.Info("pipeline: duplicate lead skipped", zap.String("business", rec.BusinessName))
			res.Duplicates++
		case SkippedInvalid:
			log.Debug("pipeline: invalid record skipped", zap.String("business", rec.BusinessName))
			res.Invalid++
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("saved", res.Saved),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("invalid", res.Invalid),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// targetLocation resolves the location id the batch is attributed to. Known
// targets use their id directly; coordinate targets are inferred from the
// batch's addresses. A nil id means every lead is persisted unanchored.
func (p *Pipeline) targetLocation(
	ctx context.Context,
	target model.SearchTarget,
	records []model.RawBusinessRecord,
	log *zap.Logger,
) (*string, error) {
	if id, ok := target.LocationID(); ok {
		return &id, nil
	}

	addresses := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Address != nil {
			addresses = append(addresses, *rec.Address)
		}
	}

	guess := p.engine.Infer(addresses)
	if guess.City == "" {
		log.Warn("pipeline: could not infer a city from batch addresses",
			zap.Int("addresses", len(addresses)),
		)
		return nil, nil
	}
	log.Info("pipeline: inferred search area",
		zap.String("city", guess.City),
		zap.String("state", guess.State),
	)

	return p.resolver.Resolve(ctx, guess.City, guess.State)
}
