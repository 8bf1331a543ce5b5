package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/google/uuid"
)

const (
	auditBatchSize     = 100
	auditFlushInterval = time.Second
	defaultAuditBuffer = 1000

	redacted = "***REDACTED***"
)

// AuditLogEntry is what callers hand to the audit trail. Request metadata
// left empty is filled from the context set up by util.IPMiddleware.
type AuditLogEntry struct {
	EventType     models.EventType
	Severity      models.EventSeverity
	ActorEmail    string
	ActorIP       string
	ResourceType  models.ResourceType
	ResourceID    string
	ResourceName  string
	Action        string
	Details       models.AuditDetails
	Success       bool
	ErrorMessage  string
	UserAgent     string
	RequestPath   string
	RequestMethod string
}

// Auditor is the write side of AuditService.
type Auditor interface {
	Log(ctx context.Context, entry AuditLogEntry)
}

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	CreateAuditLogBatch(ctx context.Context, logs []*models.AuditLog) error
	GetAuditLogsPaginated(
		ctx context.Context,
		params store.PaginationParams,
		filters store.AuditLogFilters,
	) ([]models.AuditLog, store.PaginationResult, error)
	DeleteOldAuditLogs(ctx context.Context, olderThan time.Time) (int64, error)
	GetAuditLogStats(ctx context.Context, startTime, endTime time.Time) (store.AuditLogStats, error)
}

// AuditService queues entries from request handlers and writes them in
// batches from a single goroutine. When disabled every write is a no-op
// but the read side still works.
type AuditService struct {
	store   auditStore
	enabled bool

	queue    chan *models.AuditLog
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

var _ Auditor = (*AuditService)(nil)

func NewAuditService(s auditStore, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = defaultAuditBuffer
	}

	svc := &AuditService{
		store:   s,
		enabled: enabled,
		queue:   make(chan *models.AuditLog, bufferSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if !enabled {
		close(svc.done)
		logger.Infof("Audit logging disabled")
		return svc
	}

	go svc.run()
	logger.Infof("Audit logging enabled (queue size %d)", bufferSize)
	return svc
}

// run owns the pending batch; nothing else touches it.
func (s *AuditService) run() {
	defer close(s.done)

	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	batch := make([]*models.AuditLog, 0, auditBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.store.CreateAuditLogBatch(context.Background(), batch); err != nil {
			logger.Errorf("Dropped %d audit entries: %v", len(batch), err)
		}
		batch = make([]*models.AuditLog, 0, auditBatchSize)
	}

	for {
		select {
		case entry := <-s.queue:
			batch = append(batch, entry)
			if len(batch) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case entry := <-s.queue:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *AuditService) newLog(ctx context.Context, e AuditLogEntry) *models.AuditLog {
	req := util.RequestInfoFrom(ctx)
	now := time.Now()

	log := &models.AuditLog{
		ID:            uuid.New().String(),
		EventType:     e.EventType,
		EventTime:     now,
		Severity:      e.Severity,
		ActorEmail:    firstNonEmpty(e.ActorEmail, models.GetActorEmailFromContext(ctx)),
		ActorIP:       firstNonEmpty(e.ActorIP, req.IP),
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		ResourceName:  e.ResourceName,
		Action:        e.Action,
		Details:       maskSensitiveDetails(e.Details),
		Success:       e.Success,
		ErrorMessage:  e.ErrorMessage,
		UserAgent:     firstNonEmpty(e.UserAgent, req.UserAgent),
		RequestPath:   firstNonEmpty(e.RequestPath, req.Path),
		RequestMethod: firstNonEmpty(e.RequestMethod, req.Method),
		CreatedAt:     now,
	}
	if log.Severity == "" {
		log.Severity = models.SeverityInfo
	}
	return log
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Log queues entry without blocking. A full queue drops the entry.
func (s *AuditService) Log(ctx context.Context, entry AuditLogEntry) {
	if !s.enabled {
		return
	}

	select {
	case s.queue <- s.newLog(ctx, entry):
	default:
		logger.Warningf("Audit queue full, dropping %s (%s)", entry.EventType, entry.Action)
	}
}

// LogSync writes entry immediately. Forced sign-outs use it so the record
// exists before the response is sent.
func (s *AuditService) LogSync(ctx context.Context, entry AuditLogEntry) error {
	if !s.enabled {
		return nil
	}
	return s.store.CreateAuditLog(ctx, s.newLog(ctx, entry))
}

func (s *AuditService) GetAuditLogs(
	ctx context.Context,
	params store.PaginationParams,
	filters store.AuditLogFilters,
) ([]models.AuditLog, store.PaginationResult, error) {
	return s.store.GetAuditLogsPaginated(ctx, params, filters)
}

// CleanupOldLogs deletes entries older than retention and reports how many went.
func (s *AuditService) CleanupOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOldAuditLogs(ctx, time.Now().Add(-retention))
}

func (s *AuditService) GetAuditLogStats(
	ctx context.Context,
	startTime, endTime time.Time,
) (store.AuditLogStats, error) {
	return s.store.GetAuditLogStats(ctx, startTime, endTime)
}

// Shutdown drains the queue and waits for the final write. It is safe to
// call more than once.
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
		logger.Infof("Audit queue drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit shutdown: %w", ctx.Err())
	}
}

// Keys containing these fragments are replaced outright.
var redactedKeys = []string{"password", "secret", "access_token", "link_token"}

// Keys containing these fragments keep their head and tail so entries can
// still be correlated.
var truncatedKeys = []string{"token_id", "tab_id"}

func maskSensitiveDetails(details models.AuditDetails) models.AuditDetails {
	if details == nil {
		return nil
	}

	masked := make(models.AuditDetails, len(details))
	for key, value := range details {
		lower := strings.ToLower(key)
		switch {
		case containsAny(lower, redactedKeys):
			masked[key] = redacted
		case containsAny(lower, truncatedKeys):
			masked[key] = truncateID(value)
		default:
			masked[key] = value
		}
	}
	return masked
}

func truncateID(value any) any {
	str, ok := value.(string)
	if !ok || len(str) <= 12 {
		return value
	}
	return str[:8] + "..." + str[len(str)-4:]
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
