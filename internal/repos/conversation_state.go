package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

type ConversationStateRepo interface {
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.ConversationState, error)
	Replace(ctx context.Context, tx *gorm.DB, state *types.ConversationState) error
	UpdateFields(ctx context.Context, tx *gorm.DB, phone string, updates map[string]any) (int64, error)
	DeleteByPhone(ctx context.Context, tx *gorm.DB, phone string) error
}

type conversationStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationStateRepo(db *gorm.DB, baseLog *logger.Logger) ConversationStateRepo {
	repoLog := baseLog.With("repo", "ConversationStateRepo")
	return &conversationStateRepo{db: db, log: repoLog}
}

func (cr *conversationStateRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *conversationStateRepo) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.ConversationState, error) {
	var results []*types.ConversationState
	if err := cr.conn(tx).WithContext(ctx).
		Where("phone = ?", phone).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Replace deletes any existing row for the phone and inserts the new one.
// Last write wins: starting a flow always displaces whatever was active.
func (cr *conversationStateRepo) Replace(ctx context.Context, tx *gorm.DB, state *types.ConversationState) error {
	run := func(inner *gorm.DB) error {
		if err := inner.WithContext(ctx).
			Where("phone = ?", state.Phone).
			Delete(&types.ConversationState{}).Error; err != nil {
			return err
		}
		return inner.WithContext(ctx).Create(state).Error
	}
	if tx != nil {
		return run(tx)
	}
	return cr.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return run(inner)
	})
}

// UpdateFields applies the column updates and reports how many rows matched,
// so the caller can tell an update of a vanished row apart from success.
func (cr *conversationStateRepo) UpdateFields(ctx context.Context, tx *gorm.DB, phone string, updates map[string]any) (int64, error) {
	res := cr.conn(tx).WithContext(ctx).
		Model(&types.ConversationState{}).
		Where("phone = ?", phone).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (cr *conversationStateRepo) DeleteByPhone(ctx context.Context, tx *gorm.DB, phone string) error {
	return cr.conn(tx).WithContext(ctx).
		Where("phone = ?", phone).
		Delete(&types.ConversationState{}).Error
}
