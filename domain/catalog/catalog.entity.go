package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Channel is a mirrored YouTube channel. Rows are shared by every
// collection that references them and are never deleted with a collection.
type Channel struct {
	gorm.Model
	ExternalID           string `gorm:"uniqueIndex"`
	Title                string
	ThumbnailURL         string
	SubscriberCount      uint64
	ThumbnailRefreshedAt *time.Time
}

// Video belongs to exactly one Channel and is cataloged lazily the first
// time someone adds it to a collection.
type Video struct {
	gorm.Model
	ExternalID   string `gorm:"uniqueIndex"`
	Title        string
	ThumbnailURL string
	ChannelID    uint
	Channel      Channel
}

type ChannelOut struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	SubscriberCount uint64 `json:"subscriberCount"`
}

type VideoOut struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ChannelID    string `json:"channelId"`
}

func ChannelToOut(channel *Channel) ChannelOut {
	return ChannelOut{
		ID:              channel.ExternalID,
		Title:           channel.Title,
		ThumbnailURL:    channel.ThumbnailURL,
		SubscriberCount: channel.SubscriberCount,
	}
}

func VideoToOut(video *Video) VideoOut {
	return VideoOut{
		ID:           video.ExternalID,
		Title:        video.Title,
		ThumbnailURL: video.ThumbnailURL,
		ChannelID:    video.Channel.ExternalID,
	}
}
