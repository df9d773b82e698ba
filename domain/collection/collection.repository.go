package collection

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	Repository interface {
		GetOwned(ctx context.Context, ownerId uint) ([]Collection, error)
		GetShared(ctx context.Context, userId uint) ([]Collection, error)
		GetBySlug(ctx context.Context, ownerId uint, slug string) (*Collection, bool, error)
		Create(ctx context.Context, collection *Collection) error
		Update(ctx context.Context, collection *Collection) error

		GetItems(ctx context.Context, collectionId uint) ([]CollectionItem, error)
		GetItemByUuid(ctx context.Context, collectionId uint, itemId string) (*CollectionItem, bool, error)
		CreateItem(ctx context.Context, item *CollectionItem) error
		DeleteItem(ctx context.Context, item *CollectionItem) error

		HasGrant(ctx context.Context, userId uint, collectionId uint) (bool, error)
		CreateGrant(ctx context.Context, grant *CollectionAccessGrant) error

		HasLike(ctx context.Context, userId uint, collectionId uint) (bool, error)
		CountLikes(ctx context.Context, collectionId uint) (int64, error)
		CreateLike(ctx context.Context, like *CollectionLike) error
		DeleteLike(ctx context.Context, userId uint, collectionId uint) error

		Transaction(ctx context.Context, fn func(tx *gorm.DB, txRepo Repository) error) error
	}

	collectionRepository struct {
		db *gorm.DB
	}
)

func CreateRepository(db *gorm.DB) Repository {
	return &collectionRepository{
		db: db,
	}
}

// Transaction runs fn with a repository bound to one database transaction,
// so multi-write sequences either land completely or not at all.
func (r *collectionRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB, txRepo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &collectionRepository{db: tx})
	})
}

func (r *collectionRepository) GetOwned(ctx context.Context, ownerId uint) ([]Collection, error) {
	collections := make([]Collection, 0)
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerId).
		Preload("Owner").
		Order("created_at").
		Find(&collections)

	return collections, result.Error
}

func (r *collectionRepository) GetShared(ctx context.Context, userId uint) ([]Collection, error) {
	collections := make([]Collection, 0)
	grantedIds := r.db.Model(&CollectionAccessGrant{}).
		Select("collection_id").
		Where("user_id = ?", userId)

	result := r.db.WithContext(ctx).
		Where("id IN (?)", grantedIds).
		Preload("Owner").
		Order("created_at").
		Find(&collections)

	return collections, result.Error
}

func (r *collectionRepository) GetBySlug(ctx context.Context, ownerId uint, slug string) (*Collection, bool, error) {
	collection := &Collection{}
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND slug = ?", ownerId, slug).
		Preload("Owner").
		First(collection)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return collection, false, nil
	}

	return collection, result.Error == nil, result.Error
}

func (r *collectionRepository) Create(ctx context.Context, collection *Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

func (r *collectionRepository) Update(ctx context.Context, collection *Collection) error {
	return r.db.WithContext(ctx).Save(collection).Error
}

func (r *collectionRepository) GetItems(ctx context.Context, collectionId uint) ([]CollectionItem, error) {
	items := make([]CollectionItem, 0)
	result := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionId).
		Preload("Channel").
		Preload("Video").
		Preload("Video.Channel").
		Order("created_at").
		Find(&items)

	return items, result.Error
}

func (r *collectionRepository) GetItemByUuid(ctx context.Context, collectionId uint, itemId string) (*CollectionItem, bool, error) {
	item := &CollectionItem{}
	result := r.db.WithContext(ctx).
		Where("collection_id = ? AND uuid = ?", collectionId, itemId).
		First(item)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return item, false, nil
	}

	return item, result.Error == nil, result.Error
}

func (r *collectionRepository) CreateItem(ctx context.Context, item *CollectionItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DeleteItem removes the row outright. The per-type unique indexes span
// every stored row, so a soft-deleted tombstone would block re-adding the
// same channel or video later.
func (r *collectionRepository) DeleteItem(ctx context.Context, item *CollectionItem) error {
	return r.db.WithContext(ctx).Unscoped().Delete(item).Error
}

func (r *collectionRepository) HasGrant(ctx context.Context, userId uint, collectionId uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CollectionAccessGrant{}).
		Where("user_id = ? AND collection_id = ?", userId, collectionId).
		Count(&count)

	return count > 0, result.Error
}

// CreateGrant is an idempotent upsert, granting twice is a no-op success.
func (r *collectionRepository) CreateGrant(ctx context.Context, grant *CollectionAccessGrant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(grant).Error
}

func (r *collectionRepository) HasLike(ctx context.Context, userId uint, collectionId uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CollectionLike{}).
		Where("user_id = ? AND collection_id = ?", userId, collectionId).
		Count(&count)

	return count > 0, result.Error
}

func (r *collectionRepository) CountLikes(ctx context.Context, collectionId uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CollectionLike{}).
		Where("collection_id = ?", collectionId).
		Count(&count)

	return count, result.Error
}

// CreateLike relies on the unique constraint for idempotence, a duplicate
// like is simply swallowed.
func (r *collectionRepository) CreateLike(ctx context.Context, like *CollectionLike) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like).Error
}

// DeleteLike is idempotent, removing an absent like succeeds. Likes are
// removed outright so liking again never collides with a tombstone under
// the unique index.
func (r *collectionRepository) DeleteLike(ctx context.Context, userId uint, collectionId uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND collection_id = ?", userId, collectionId).
		Unscoped().Delete(&CollectionLike{}).Error
}
