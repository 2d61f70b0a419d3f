// internal/service/sweeper.go
package service

import (
	"context"
	"log/slog"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
)

// SweepReport aggregates one recovery pass. The counts are observability,
// not correctness; settlement itself stays idempotent either way.
type SweepReport struct {
	Scanned          int `json:"scanned"`
	Rearmed          int `json:"rearmed"` // stuck or errored listings reset to active
	Sold             int `json:"sold"`
	NoBids           int `json:"no_bids"`
	ReserveNotMet    int `json:"reserve_not_met"`
	AlreadyProcessed int `json:"already_processed"`
	Errored          int `json:"errored"`
}

// Sweeper finds expired, stuck, or errored auctions and re-drives them
// through the settlement engine. It is a stateless function of "now" plus
// store queries; the caller decides the cadence (a ticker in production,
// direct calls in tests and the admin endpoint).
type Sweeper struct {
	dbExecutor     repository.DBExecutor
	listingRepo    repository.ListingRepository
	settlement     SettlementService
	staleThreshold time.Duration
	logger         *slog.Logger
}

// NewSweeper creates a new Sweeper. staleThreshold bounds how long an
// in-flight processing claim is trusted before being presumed crashed.
func NewSweeper(
	dbExecutor repository.DBExecutor,
	listingRepo repository.ListingRepository,
	settlement SettlementService,
	staleThreshold time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		dbExecutor:     dbExecutor,
		listingRepo:    listingRepo,
		settlement:     settlement,
		staleThreshold: staleThreshold,
		logger:         logger,
	}
}

// SweepExpiredAuctions runs one recovery pass as of now.
func (s *Sweeper) SweepExpiredAuctions(ctx context.Context, now time.Time) (*SweepReport, error) {
	listings, err := s.listingRepo.FindDueForSettlement(ctx, s.dbExecutor, now, s.staleThreshold)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(listings)}
	for i := range listings {
		listing := &listings[i]

		// Stale claims and errored listings are re-armed to active first,
		// so the normal compare-and-swap pipeline re-runs cleanly.
		if listing.Status == domain.ListingStatusProcessing || listing.Status == domain.ListingStatusError {
			rearmed, err := s.listingRepo.UpdateStatusIf(ctx, s.dbExecutor, listing.ID,
				listing.Status, domain.ListingStatusActive)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to re-arm listing", "listing_id", listing.ID, "error", err)
				report.Errored++
				continue
			}
			if !rearmed {
				// The claim holder finished (or another sweeper re-armed it).
				continue
			}
			report.Rearmed++
		}

		result, err := s.settlement.ProcessEndedAuction(ctx, listing.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Sweep settlement failed", "listing_id", listing.ID, "error", err)
			report.Errored++
			continue
		}
		switch {
		case result.AlreadyProcessed:
			report.AlreadyProcessed++
		case result.Outcome == OutcomeSold:
			report.Sold++
		case result.Outcome == OutcomeNoBids:
			report.NoBids++
		case result.Outcome == OutcomeReserveNotMet:
			report.ReserveNotMet++
		}
	}

	s.logger.InfoContext(ctx, "Sweep completed",
		"scanned", report.Scanned, "rearmed", report.Rearmed, "sold", report.Sold,
		"no_bids", report.NoBids, "reserve_not_met", report.ReserveNotMet,
		"already_processed", report.AlreadyProcessed, "errored", report.Errored)
	return report, nil
}
