package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// ProfileRepository читает справочник пользователей внешнего сервиса
// аутентификации. Таблица profiles может быть ещё не создана.
type ProfileRepository interface {
	Available(ctx context.Context) bool
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type profileRepository struct {
	db   *gorm.DB
	caps *Capabilities
}

// NewProfileRepository создаёт новый экземпляр репозитория
func NewProfileRepository(db *gorm.DB, caps *Capabilities) ProfileRepository {
	return &profileRepository{db: db, caps: caps}
}

func (r *profileRepository) Available(ctx context.Context) bool {
	return r.caps.HasRelation(ctx, domain.TableProfiles)
}

func (r *profileRepository) EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	emails := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}

	var profiles []domain.Profile
	err := r.db.WithContext(ctx).
		Select("id", "email").
		Where("id IN ?", ids).
		Find(&profiles).Error
	if err != nil {
		if IsMissingRelation(err) {
			r.caps.MarkMissing(domain.TableProfiles)
		}
		return nil, storeError(domain.TableProfiles, "lookup", err)
	}

	for _, p := range profiles {
		if p.Email != "" {
			emails[p.ID] = p.Email
		}
	}
	return emails, nil
}
