// Package stats builds the dashboard summary from completed scans.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// Estimated savings per caught fraudulent document, in crores. Dashboard
// display figure only.
const savingsPerCatchCrores = 0.027

const recentScanLimit = 5

// Results is the store the dashboard reads from.
type Results interface {
	List() []domain.ScanResult
}

// Summary is the headline counters block.
type Summary struct {
	TotalScanned    int     `json:"total_scanned"`
	FraudDetected   int     `json:"fraud_detected"`
	SavingsInCrores float64 `json:"savings_in_crores"`
}

// DayActivity is one weekday's upload and fraud counts.
type DayActivity struct {
	Day     string `json:"day"`
	Uploads int    `json:"uploads"`
	Fraud   int    `json:"fraud"`
}

// RecentScan is one row of the dashboard's latest-scans table.
type RecentScan struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Dashboard is the full stats payload.
type Dashboard struct {
	Summary        Summary       `json:"summary"`
	WeeklyActivity []DayActivity `json:"weekly_activity"`
	RecentScans    []RecentScan  `json:"recent_scans"`
}

// Service computes dashboard stats from the result store.
type Service struct {
	results Results
	now     func() time.Time
}

func NewService(results Results) *Service {
	return &Service{results: results, now: time.Now}
}

// Dashboard aggregates every stored result into the dashboard payload.
// Weekly activity covers the last seven days bucketed by weekday; recent
// scans are the newest five, newest first.
func (s *Service) Dashboard() Dashboard {
	results := s.results.List()
	now := s.now()

	fraudDetected := 0
	weekly := make([]DayActivity, 7)
	for i := range weekly {
		day := now.AddDate(0, 0, i-6)
		weekly[i].Day = day.Format("Mon")
	}
	weekAgo := now.AddDate(0, 0, -6).Truncate(24 * time.Hour)

	for _, r := range results {
		critical := r.Severity == domain.SeverityCritical
		if critical {
			fraudDetected++
		}
		if r.ScannedAt.Before(weekAgo) {
			continue
		}
		idx := 6 - int(now.Sub(r.ScannedAt).Hours()/24)
		if idx < 0 || idx > 6 {
			continue
		}
		weekly[idx].Uploads++
		if critical {
			weekly[idx].Fraud++
		}
	}

	recent := make([]RecentScan, 0, recentScanLimit)
	for i := len(results) - 1; i >= 0 && len(recent) < recentScanLimit; i-- {
		r := results[i]
		recent = append(recent, RecentScan{
			ID:        r.FileID,
			Filename:  r.Filename,
			Status:    statusLabel(r.Severity),
			Timestamp: relativeTime(now.Sub(r.ScannedAt)),
		})
	}

	savings := math.Round(float64(fraudDetected)*savingsPerCatchCrores*100) / 100
	return Dashboard{
		Summary: Summary{
			TotalScanned:    len(results),
			FraudDetected:   fraudDetected,
			SavingsInCrores: savings,
		},
		WeeklyActivity: weekly,
		RecentScans:    recent,
	}
}

func statusLabel(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return "critical"
	case domain.SeverityWarning:
		return "warning"
	default:
		return "safe"
	}
}

func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d mins ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
