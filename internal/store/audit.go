package store

import (
	"context"
	"time"

	"github.com/psychmag/psychmag/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *Store) CreateAuditLogBatch(ctx context.Context, logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

func applyAuditFilters(q *gorm.DB, f AuditLogFilters) *gorm.DB {
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if f.ActorEmail != "" {
		q = q.Where("actor_email = ?", models.NormalizeEmail(f.ActorEmail))
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Success != nil {
		q = q.Where("success = ?", *f.Success)
	}
	if !f.StartTime.IsZero() {
		q = q.Where("event_time >= ?", f.StartTime)
	}
	if !f.EndTime.IsZero() {
		q = q.Where("event_time <= ?", f.EndTime)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(action LIKE ? OR resource_name LIKE ? OR actor_email LIKE ?)", like, like, like)
	}
	return q
}

func (s *Store) GetAuditLogsPaginated(
	ctx context.Context,
	params PaginationParams,
	filters AuditLogFilters,
) ([]models.AuditLog, PaginationResult, error) {
	q := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditLog{}), filters)
	return paginate[models.AuditLog](q, "event_time DESC", params)
}

func (s *Store) DeleteOldAuditLogs(ctx context.Context, olderThan time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

func (s *Store) GetAuditLogStats(
	ctx context.Context,
	startTime, endTime time.Time,
) (AuditLogStats, error) {
	stats := AuditLogStats{EventsByType: make(map[models.EventType]int64)}
	filters := AuditLogFilters{StartTime: startTime, EndTime: endTime}

	base := func() *gorm.DB {
		return applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditLog{}), filters)
	}

	if err := base().Count(&stats.TotalEvents).Error; err != nil {
		return stats, err
	}
	if err := base().Where("success = ?", true).Count(&stats.SuccessCount).Error; err != nil {
		return stats, err
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	var rows []struct {
		EventType models.EventType
		Count     int64
	}
	if err := base().Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return stats, err
	}
	for _, r := range rows {
		stats.EventsByType[r.EventType] = r.Count
	}
	return stats, nil
}
