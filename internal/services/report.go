package services

import (
	"sync"

	"stargazer/internal/models"
)

// ReportStore retains the most recent forecast evaluation for the HTTP API.
type ReportStore struct {
	mu     sync.RWMutex
	report *models.Report
}

func NewReportStore() *ReportStore {
	return &ReportStore{}
}

func (s *ReportStore) Set(report *models.Report) {
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()
}

func (s *ReportStore) Latest() (*models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.report != nil
}
