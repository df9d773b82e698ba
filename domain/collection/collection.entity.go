package collection

import (
	"time"

	"watchlikemeBackend/domain/catalog"
	"watchlikemeBackend/domain/user"

	"gorm.io/gorm"
)

// ProfileSlug is the distinguished slug of a user's public profile
// collection. It can never be turned private.
const ProfileSlug = "profile"

type Collection struct {
	gorm.Model
	UUID    string `gorm:"uniqueIndex"`
	Slug    string `gorm:"uniqueIndex:uq_owner_slug"`
	OwnerID uint   `gorm:"uniqueIndex:uq_owner_slug"`
	Owner   user.User
	Name    string
	Note    string
	Public  bool
}

// CollectionItem references exactly one of a channel or a video. The two
// partial unique indexes keep an item per type per collection; NULL ids do
// not collide, so mixing types is fine.
type CollectionItem struct {
	gorm.Model
	UUID         string `gorm:"uniqueIndex"`
	CollectionID uint   `gorm:"index;uniqueIndex:uq_item_channel;uniqueIndex:uq_item_video"`
	ChannelID    *uint  `gorm:"uniqueIndex:uq_item_channel"`
	Channel      *catalog.Channel
	VideoID      *uint `gorm:"uniqueIndex:uq_item_video"`
	Video        *catalog.Video
}

// CollectionAccessGrant lets a non-owner read and like a collection.
type CollectionAccessGrant struct {
	gorm.Model
	UserID       uint `gorm:"uniqueIndex:uq_grant"`
	CollectionID uint `gorm:"uniqueIndex:uq_grant"`
	User         user.User
	Collection   Collection
}

type CollectionLike struct {
	gorm.Model
	UserID       uint `gorm:"uniqueIndex:uq_like"`
	CollectionID uint `gorm:"uniqueIndex:uq_like"`
}

const ItemKindChannel = "channel"
const ItemKindVideo = "video"

type CollectionIn struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
	Note string `json:"note"`
}

// CollectionUpdateIn fields are pointers so an omitted field means "leave
// unchanged" rather than "reset".
type CollectionUpdateIn struct {
	Name   *string `json:"name"`
	Note   *string `json:"note"`
	Public *bool   `json:"public"`
}

type ItemIn struct {
	Kind         string `json:"kind" binding:"required,oneof=channel video"`
	ExternalID   string `json:"externalId" binding:"required"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type GrantIn struct {
	Username string `json:"username" binding:"required"`
}

type CollectionOut struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Note      string `json:"note"`
	Public    bool   `json:"public"`
	Owner     string `json:"owner"`
	Likes     int64  `json:"likes"`
	LikedByMe bool   `json:"likedByMe"`
}

type ItemOut struct {
	ID      string              `json:"id"`
	Kind    string              `json:"kind"`
	Channel *catalog.ChannelOut `json:"channel,omitempty"`
	Video   *catalog.VideoOut   `json:"video,omitempty"`
	AddedAt time.Time           `json:"addedAt"`
}

type CollectionDetailOut struct {
	CollectionOut
	Items []ItemOut `json:"items"`
}

type OverviewOut struct {
	OwnedCollections  []CollectionOut `json:"ownedCollections"`
	SharedCollections []CollectionOut `json:"sharedCollections"`
}

func ItemToOut(item *CollectionItem) ItemOut {
	out := ItemOut{
		ID:      item.UUID,
		AddedAt: item.CreatedAt,
	}

	if item.ChannelID != nil && item.Channel != nil {
		out.Kind = ItemKindChannel
		channel := catalog.ChannelToOut(item.Channel)
		out.Channel = &channel
	} else if item.VideoID != nil && item.Video != nil {
		out.Kind = ItemKindVideo
		video := catalog.VideoToOut(item.Video)
		out.Video = &video
	}

	return out
}
