package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReportRepository reads the client-hours projection. The view recomputes on
// every query; nothing is cached.
type ReportRepository interface {
	ListClientHours(ctx context.Context) ([]domain.ClientHoursLine, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository constructs repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) ListClientHours(ctx context.Context) ([]domain.ClientHoursLine, error) {
	const query = `
        SELECT name, client_name, project_id, project_name, contracted_hours, consumed_hours, remaining_hours
        FROM report_client_hours ORDER BY client_name, project_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClientHoursLine
	for rows.Next() {
		var line domain.ClientHoursLine
		if err := rows.Scan(&line.Name, &line.ClientName, &line.ProjectID, &line.ProjectName,
			&line.ContractedHours, &line.ConsumedHours, &line.RemainingHours); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}
