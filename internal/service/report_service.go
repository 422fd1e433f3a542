package service

import (
	"context"
	"time"

	"medstock/internal/domain/prescription"
)

// Recap is the raw material the mobile client renders into its dispensation
// report: prescriptions in [From, To) newest first, with totals. Rendering
// (PDF or otherwise) stays client-side.
type Recap struct {
	From          time.Time                    `json:"from"`
	To            time.Time                    `json:"to"`
	Prescriptions []*prescription.Prescription `json:"prescriptions"`
	TotalIssued   int                          `json:"total_issued"`
	TotalQuantity int                          `json:"total_quantity"`
}

type ReportService struct {
	repo prescription.Repository
}

func NewReportService(repo prescription.Repository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Recap(ctx context.Context, from, to time.Time) (*Recap, error) {
	ps, err := s.repo.List(ctx, &prescription.ListQuery{From: from, To: to})
	if err != nil {
		return nil, err
	}

	recap := &Recap{From: from, To: to, Prescriptions: ps, TotalIssued: len(ps)}
	for _, p := range ps {
		recap.TotalQuantity += p.Quantity
	}
	return recap, nil
}
