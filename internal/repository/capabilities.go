package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Capabilities кэширует наличие необязательных таблиц, чтобы не
// выполнять заведомо падающий "богатый" запрос на каждом вызове.
// Отрицательный результат перепроверяется не чаще recheck.
type Capabilities struct {
	db      *gorm.DB
	logger  *slog.Logger
	recheck time.Duration
	now     func() time.Time

	mu    sync.Mutex
	known map[string]relationState
}

type relationState struct {
	present   bool
	checkedAt time.Time
}

// NewCapabilities создаёт кэш возможностей схемы
func NewCapabilities(db *gorm.DB, recheck time.Duration, logger *slog.Logger) *Capabilities {
	return &Capabilities{
		db:      db,
		logger:  logger,
		recheck: recheck,
		now:     time.Now,
		known:   make(map[string]relationState),
	}
}

// HasRelation сообщает, существует ли таблица. Кэшируется только
// подтверждённый ответ: при сбое самой проверки (отмена запроса, таймаут,
// обрыв соединения) возвращается последнее известное состояние, а без
// него - true, чтобы вызывающий код попробовал полную форму запроса.
func (c *Capabilities) HasRelation(ctx context.Context, table string) bool {
	c.mu.Lock()
	state, ok := c.known[table]
	c.mu.Unlock()

	if ok && (state.present || c.now().Sub(state.checkedAt) < c.recheck) {
		return state.present
	}

	err := c.probe(ctx, table)
	switch {
	case err == nil:
		c.store(table, true)
		return true
	case IsMissingRelation(err):
		c.store(table, false)
		c.logger.Warn("relation unavailable, using reduced query shape", slog.String("table", table))
		return false
	default:
		c.logger.Warn("relation probe failed, result not cached",
			slog.String("table", table),
			slog.Any("error", err),
		)
		return !ok || state.present
	}
}

// probe выполняет пустую выборку, чтобы получить ошибку драйвера как есть
func (c *Capabilities) probe(ctx context.Context, table string) error {
	return c.db.WithContext(ctx).Exec("SELECT 1 FROM ? LIMIT 0", clause.Table{Name: table}).Error
}

// MarkMissing фиксирует таблицу как отсутствующую после ошибки запроса
func (c *Capabilities) MarkMissing(table string) {
	c.store(table, false)
	c.logger.Warn("relation reported missing by query", slog.String("table", table))
}

func (c *Capabilities) store(table string, present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[table] = relationState{present: present, checkedAt: c.now()}
}
