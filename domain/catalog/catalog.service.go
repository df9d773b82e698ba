package catalog

import (
	"context"
	"net/http"
	"os"
	"time"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/config"
	"watchlikemeBackend/youtube"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

type (
	Service interface {
		MirrorSubscriptions(ctx context.Context, authUser auth.AuthenticatedUser) ([]ChannelOut, error)
	}

	// ClientBuilder yields a YouTube API client bound to one request's
	// credentials. Nothing is shared across requests.
	ClientBuilder func(httpClient *http.Client) *youtube.Client

	catalogService struct {
		catalogRepo  Repository
		tokenManager auth.TokenManager
		buildClient  ClientBuilder
	}
)

func CreateService(catalogRepo Repository, tokenManager auth.TokenManager, buildClient ClientBuilder) Service {
	return &catalogService{
		catalogRepo:  catalogRepo,
		tokenManager: tokenManager,
		buildClient:  buildClient,
	}
}

// DefaultClientBuilder wires the configured API base and the env API key.
func DefaultClientBuilder(config *config.WatchLikeMeConfig) ClientBuilder {
	apiKey := os.Getenv("WLM_YOUTUBE_API_KEY")
	return func(httpClient *http.Client) *youtube.Client {
		return youtube.NewClient(config.YouTube.BaseURL, apiKey, httpClient)
	}
}

// MirrorSubscriptions pulls the caller's YouTube subscriptions and upserts
// them into the channel catalog. Requires a live Google link.
func (s *catalogService) MirrorSubscriptions(ctx context.Context, authUser auth.AuthenticatedUser) ([]ChannelOut, error) {
	token, err := s.tokenManager.EnsureFresh(ctx, authUser.UserId)
	if err != nil {
		return nil, err
	}

	client := s.buildClient(s.tokenManager.Client(ctx, token))
	subscriptions, err := client.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	mirrored := make([]*Channel, 0, len(subscriptions))
	for _, sub := range subscriptions {
		stored, err := s.catalogRepo.UpsertChannel(ctx, &Channel{
			ExternalID:           sub.ID,
			Title:                sub.Title,
			ThumbnailURL:         sub.ThumbnailURL,
			SubscriberCount:      sub.SubscriberCount,
			ThumbnailRefreshedAt: &now,
		})
		if err != nil {
			return nil, err
		}
		mirrored = append(mirrored, stored)
	}

	log.Info("Mirrored YouTube subscriptions.", "user", authUser.UserId, "channels", len(mirrored))

	return lo.Map(mirrored, func(channel *Channel, _ int) ChannelOut {
		return ChannelToOut(channel)
	}), nil
}
