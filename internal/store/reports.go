package store

import (
	"context"
	"database/sql"
	"fmt"
)

// JobPipelineStats aggregates one job's hiring funnel for reporting.
type JobPipelineStats struct {
	JobID             string
	JobTitle          string
	JobStatus         string
	Applications      int
	Applied           int
	Shortlisted       int
	Assessment        int
	Interview         int
	Offer             int
	Hired             int
	Rejected          int
	AvgMatchScore     float64
	AssignmentsGraded int
	AssignmentsPassed int
}

// PassRate is the share of graded assignments that met the passing score,
// or 0 when nothing has been graded.
func (s *JobPipelineStats) PassRate() float64 {
	if s.AssignmentsGraded == 0 {
		return 0
	}
	return float64(s.AssignmentsPassed) / float64(s.AssignmentsGraded)
}

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// JobPipeline returns per-job funnel statistics, newest job first.
func (s *ReportStore) JobPipeline(ctx context.Context) ([]JobPipelineStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.id, j.title, j.status,
		       COUNT(a.id),
		       COUNT(a.id) FILTER (WHERE a.status = 'applied'),
		       COUNT(a.id) FILTER (WHERE a.status = 'shortlisted'),
		       COUNT(a.id) FILTER (WHERE a.status = 'assessment'),
		       COUNT(a.id) FILTER (WHERE a.status = 'interview'),
		       COUNT(a.id) FILTER (WHERE a.status = 'offer'),
		       COUNT(a.id) FILTER (WHERE a.status = 'hired'),
		       COUNT(a.id) FILTER (WHERE a.status = 'rejected'),
		       COALESCE(AVG(a.match_score), 0)
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id
		GROUP BY j.id, j.title, j.status, j.created_at
		ORDER BY j.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("job pipeline stats: %w", err)
	}
	defer rows.Close()

	var out []JobPipelineStats
	index := map[string]int{}
	for rows.Next() {
		var st JobPipelineStats
		if err := rows.Scan(&st.JobID, &st.JobTitle, &st.JobStatus,
			&st.Applications, &st.Applied, &st.Shortlisted, &st.Assessment,
			&st.Interview, &st.Offer, &st.Hired, &st.Rejected,
			&st.AvgMatchScore); err != nil {
			return nil, err
		}
		index[st.JobID] = len(out)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.fillAssessmentStats(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReportStore) fillAssessmentStats(ctx context.Context, stats []JobPipelineStats, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ap.job_id,
		       COUNT(t.id),
		       COUNT(t.id) FILTER (WHERE t.score >= asmt.passing_score)
		FROM test_assignments t
		JOIN applications ap ON ap.id = t.application_id
		JOIN assessments asmt ON asmt.id = t.assessment_id
		WHERE t.status = 'graded'
		GROUP BY ap.job_id`)
	if err != nil {
		return fmt.Errorf("assessment stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID string
		var graded, passed int
		if err := rows.Scan(&jobID, &graded, &passed); err != nil {
			return err
		}
		if i, ok := index[jobID]; ok {
			stats[i].AssignmentsGraded = graded
			stats[i].AssignmentsPassed = passed
		}
	}
	return rows.Err()
}
