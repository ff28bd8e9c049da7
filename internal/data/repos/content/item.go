package content

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domaincontent "github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// ItemRepo reads and writes the per-category question tables. Every call is
// addressed by Category so the table name never comes from request input.
type ItemRepo interface {
	GetByID(dbc dbctx.Context, cat domaincontent.Category, id int) (*domaincontent.Item, error)
	ListRange(dbc dbctx.Context, cat domaincontent.Category, firstID, lastID int) ([]*domaincontent.Item, error)
	Count(dbc dbctx.Context, cat domaincontent.Category) (int64, error)
	Upsert(dbc dbctx.Context, cat domaincontent.Category, items []*domaincontent.Item) error
	DeleteAll(dbc dbctx.Context, cat domaincontent.Category) (int64, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (ir *itemRepo) table(dbc dbctx.Context, cat domaincontent.Category) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ir.db
	}
	return transaction.WithContext(dbc.Ctx).Table(cat.Table)
}

// GetByID returns (nil, nil) when the id is not present.
func (ir *itemRepo) GetByID(dbc dbctx.Context, cat domaincontent.Category, id int) (*domaincontent.Item, error) {
	var item domaincontent.Item
	err := ir.table(dbc, cat).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (ir *itemRepo) ListRange(dbc dbctx.Context, cat domaincontent.Category, firstID, lastID int) ([]*domaincontent.Item, error) {
	var results []*domaincontent.Item
	if lastID < firstID {
		return results, nil
	}
	if err := ir.table(dbc, cat).
		Where("id BETWEEN ? AND ?", firstID, lastID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *itemRepo) Count(dbc dbctx.Context, cat domaincontent.Category) (int64, error) {
	var count int64
	if err := ir.table(dbc, cat).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ir *itemRepo) Upsert(dbc dbctx.Context, cat domaincontent.Category, items []*domaincontent.Item) error {
	if len(items) == 0 {
		return nil
	}
	return ir.table(dbc, cat).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "prompt", "answer", "explanation", "difficulty", "tags"}),
		}).
		CreateInBatches(&items, 200).Error
}

func (ir *itemRepo) DeleteAll(dbc dbctx.Context, cat domaincontent.Category) (int64, error) {
	res := ir.table(dbc, cat).Where("1 = 1").Delete(&domaincontent.Item{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
