package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	Repository interface {
		UpsertChannel(ctx context.Context, channel *Channel) (*Channel, error)
		GetChannelByExternalId(ctx context.Context, externalId string) (*Channel, bool, error)
		GetVideoByExternalId(ctx context.Context, externalId string) (*Video, bool, error)
		CreateVideo(ctx context.Context, video *Video) error
		WithTx(tx *gorm.DB) Repository
	}

	catalogRepository struct {
		db *gorm.DB
	}
)

func CreateRepository(db *gorm.DB) Repository {
	return &catalogRepository{
		db: db,
	}
}

// WithTx rebinds the repository to a running transaction so channel and
// video writes can join a collection write atomically.
func (r *catalogRepository) WithTx(tx *gorm.DB) Repository {
	return &catalogRepository{db: tx}
}

// UpsertChannel creates or refreshes a channel record by its external id
// and returns the stored row.
func (r *catalogRepository) UpsertChannel(ctx context.Context, channel *Channel) (*Channel, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "thumbnail_url", "subscriber_count", "thumbnail_refreshed_at", "updated_at"}),
	}).Create(channel).Error
	if err != nil {
		return nil, err
	}

	stored := &Channel{}
	result := r.db.WithContext(ctx).Where("external_id = ?", channel.ExternalID).First(stored)

	return stored, result.Error
}

func (r *catalogRepository) GetChannelByExternalId(ctx context.Context, externalId string) (*Channel, bool, error) {
	channel := &Channel{}
	result := r.db.WithContext(ctx).Where("external_id = ?", externalId).First(channel)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return channel, false, nil
	}

	return channel, result.Error == nil, result.Error
}

func (r *catalogRepository) GetVideoByExternalId(ctx context.Context, externalId string) (*Video, bool, error) {
	video := &Video{}
	result := r.db.WithContext(ctx).Where("external_id = ?", externalId).Preload("Channel").First(video)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return video, false, nil
	}

	return video, result.Error == nil, result.Error
}

func (r *catalogRepository) CreateVideo(ctx context.Context, video *Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}
