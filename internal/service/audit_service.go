package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/wI2L/jsondiff"
	"gorm.io/datatypes"
)

// AuditService определяет запись и чтение журнала аудита
type AuditService interface {
	LogAction(ctx context.Context, actor domain.Actor, table string, recordID uuid.UUID, action domain.AuditAction, oldData, newData any)
	GetAuditLogs(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
}

// auditWriteTimeout ограничивает запись журнала, которая не зависит
// от отмены запроса, вызвавшего изменение
const auditWriteTimeout = 5 * time.Second

// AuditLimits - ограничения размера выборки журнала
type AuditLimits struct {
	Default int
	Max     int
}

type auditService struct {
	auditRepo   repository.AuditRepository
	profileRepo repository.ProfileRepository
	limits      AuditLimits
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAuditService создаёт новый экземпляр сервиса
func NewAuditService(
	auditRepo repository.AuditRepository,
	profileRepo repository.ProfileRepository,
	limits AuditLimits,
	logger *slog.Logger,
) AuditService {
	return &auditService{
		auditRepo:   auditRepo,
		profileRepo: profileRepo,
		limits:      limits,
		validate:    validator.New(),
		logger:      logger,
	}
}

// LogAction добавляет запись в журнал. Изменение к этому моменту уже
// зафиксировано, поэтому любые ошибки только логируются.
func (s *auditService) LogAction(
	ctx context.Context,
	actor domain.Actor,
	table string,
	recordID uuid.UUID,
	action domain.AuditAction,
	oldData, newData any,
) {
	logger := s.logger.With(
		slog.String("table", table),
		slog.String("record_id", recordID.String()),
		slog.String("action", string(action)),
	)

	if actor.ID == uuid.Nil {
		logger.Warn("audit entry recorded without actor")
	}

	entry := &domain.AuditLog{
		Table:       table,
		RecordID:    recordID,
		Action:      action,
		PerformedBy: actor.ID,
	}

	var err error
	if action != domain.ActionInsert {
		if entry.OldData, err = snapshot(oldData); err != nil {
			logger.Warn("failed to encode audit snapshot", slog.Any("error", err))
			return
		}
	}
	if action != domain.ActionDelete {
		if entry.NewData, err = snapshot(newData); err != nil {
			logger.Warn("failed to encode audit snapshot", slog.Any("error", err))
			return
		}
	}
	if action == domain.ActionUpdate && !domain.IsEmptyJSON(entry.OldData) && !domain.IsEmptyJSON(entry.NewData) {
		if entry.Changes, err = diff(entry.OldData, entry.NewData); err != nil {
			// Журнал без diff всё ещё полезен
			logger.Warn("failed to diff audit snapshots", slog.Any("error", err))
		}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.auditRepo.Create(writeCtx, entry); err != nil {
		logger.Warn("failed to write audit entry", slog.Any("error", err))
	}
}

func (s *auditService) GetAuditLogs(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	if err := s.validate.Struct(&filter); err != nil {
		return nil, validationError(err)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = s.limits.Default
	case s.limits.Max > 0 && filter.Limit > s.limits.Max:
		filter.Limit = s.limits.Max
	}

	entries, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.resolveActors(ctx, entries)
	return entries, nil
}

// resolveActors дополняет записи email автора. При отсутствии таблицы
// profiles или сбое поиска подставляется "Unknown".
func (s *auditService) resolveActors(ctx context.Context, entries []domain.AuditLog) {
	if len(entries) == 0 {
		return
	}

	if !s.profileRepo.Available(ctx) {
		markActors(entries, domain.ActorRelationUnavailable)
		return
	}

	ids := make([]uuid.UUID, 0, len(entries))
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PerformedBy]; ok || e.PerformedBy == uuid.Nil {
			continue
		}
		seen[e.PerformedBy] = struct{}{}
		ids = append(ids, e.PerformedBy)
	}

	emails, err := s.profileRepo.EmailsByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrMissingRelation) {
			markActors(entries, domain.ActorRelationUnavailable)
			return
		}
		s.logger.Warn("audit actor enrichment failed",
			slog.String("table", domain.TableProfiles),
			slog.Any("error", err),
		)
		markActors(entries, domain.ActorLookupFailed)
		return
	}

	for i := range entries {
		if email, ok := emails[entries[i].PerformedBy]; ok {
			entries[i].ActorEmail = email
			entries[i].ActorResolution = domain.ActorResolved
			continue
		}
		entries[i].ActorEmail = domain.UnknownActor
		entries[i].ActorResolution = domain.ActorNotFound
	}
}

func markActors(entries []domain.AuditLog, resolution domain.ActorResolution) {
	for i := range entries {
		entries[i].ActorEmail = domain.UnknownActor
		entries[i].ActorResolution = resolution
	}
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return datatypes.JSON(data), nil
}

// diff строит JSON Patch от старого снимка к новому без служебных меток времени
func diff(oldData, newData datatypes.JSON) (datatypes.JSON, error) {
	patch, err := jsondiff.CompareJSON(oldData, newData, jsondiff.Ignores("/updated_at"))
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return datatypes.JSON("[]"), nil
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
