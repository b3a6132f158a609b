package repository

import "context"

// DashboardStats backs the admin overview screen.
type DashboardStats struct {
	TotalUsers          int   `json:"total_users"`
	TotalCaregivers     int   `json:"total_caregivers"`
	TotalClients        int   `json:"total_clients"`
	TotalBookings       int   `json:"total_bookings"`
	ActiveBookings      int   `json:"active_bookings"`
	CompletedBookings   int   `json:"completed_bookings"`
	PendingVerification int   `json:"pending_verification"`
	ActiveEmergencies   int   `json:"active_emergencies"`
	GrossVolumeCents    int64 `json:"gross_volume_cents"`
	PlatformFeeCents    int64 `json:"platform_fee_cents"`
}

type StatsRepository struct {
	db DBTX
}

func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = 'caregiver'),
			(SELECT COUNT(*) FROM users WHERE role = 'client'),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM bookings WHERE status IN ('confirmed', 'in_progress')),
			(SELECT COUNT(*) FROM bookings WHERE status = 'completed'),
			(SELECT COUNT(*) FROM verification_documents WHERE status = 'pending'),
			(SELECT COUNT(*) FROM emergencies WHERE status = 'active'),
			(SELECT COALESCE(SUM(total_cents), 0) FROM bookings WHERE status = 'completed'),
			(SELECT COALESCE(SUM(platform_fee_cents), 0) FROM bookings WHERE status = 'completed')
	`
	var stats DashboardStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalCaregivers,
		&stats.TotalClients,
		&stats.TotalBookings,
		&stats.ActiveBookings,
		&stats.CompletedBookings,
		&stats.PendingVerification,
		&stats.ActiveEmergencies,
		&stats.GrossVolumeCents,
		&stats.PlatformFeeCents,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
