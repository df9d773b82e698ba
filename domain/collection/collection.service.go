package collection

import (
	"context"
	"errors"
	"time"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/domain/catalog"
	"watchlikemeBackend/domain/user"
	"watchlikemeBackend/utils"
	"watchlikemeBackend/youtube"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type (
	Service interface {
		Get(ctx context.Context, authUser auth.AuthenticatedUser) (*OverviewOut, error)
		Create(ctx context.Context, req CollectionIn, authUser auth.AuthenticatedUser) (*CollectionOut, error)
		GetDetail(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) (*CollectionDetailOut, error)
		Update(ctx context.Context, slug string, req CollectionUpdateIn, authUser auth.AuthenticatedUser) (*CollectionOut, error)
		AddItem(ctx context.Context, slug string, req ItemIn, authUser auth.AuthenticatedUser) (*ItemOut, error)
		RemoveItem(ctx context.Context, slug string, itemId string, authUser auth.AuthenticatedUser) error
		Like(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) error
		Unlike(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) error
		GrantAccess(ctx context.Context, slug string, req GrantIn, authUser auth.AuthenticatedUser) error
		GetPublic(ctx context.Context, username string, slug string, authUser *auth.AuthenticatedUser) (*CollectionDetailOut, error)
	}

	collectionService struct {
		collectionRepo Repository
		userRepo       user.Repository
		catalogRepo    catalog.Repository
		accessResolver AccessResolver
		tokenManager   auth.TokenManager
		buildClient    catalog.ClientBuilder
	}
)

func CreateService(
	collectionRepo Repository,
	userRepo user.Repository,
	catalogRepo catalog.Repository,
	tokenManager auth.TokenManager,
	buildClient catalog.ClientBuilder,
) Service {
	return &collectionService{
		collectionRepo: collectionRepo,
		userRepo:       userRepo,
		catalogRepo:    catalogRepo,
		accessResolver: CreateAccessResolver(collectionRepo),
		tokenManager:   tokenManager,
		buildClient:    buildClient,
	}
}

func (s *collectionService) caller(ctx context.Context, authUser auth.AuthenticatedUser) (*user.User, error) {
	return s.userRepo.GetByUuid(ctx, authUser.UserId)
}

// resolveTarget finds a collection by slug. Without an owner username the
// caller's own collections are searched; with one, anyone's.
func (s *collectionService) resolveTarget(ctx context.Context, caller *user.User, ownerUsername string, slug string) (*Collection, error) {
	owner := caller
	if ownerUsername != "" && ownerUsername != caller.Username {
		target, exists, err := s.userRepo.GetByUsername(ctx, ownerUsername)
		if err != nil {
			return nil, err
		} else if !exists {
			return nil, utils.ErrorNotFound
		}
		owner = target
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, owner.ID, slug)
	if err != nil {
		return nil, err
	} else if !found {
		return nil, utils.ErrorNotFound
	}

	return collection, nil
}

func (s *collectionService) toOut(ctx context.Context, collection *Collection, viewerId uint) (CollectionOut, error) {
	likes, err := s.collectionRepo.CountLikes(ctx, collection.ID)
	if err != nil {
		return CollectionOut{}, err
	}

	likedByMe := false
	if viewerId != 0 {
		if likedByMe, err = s.collectionRepo.HasLike(ctx, viewerId, collection.ID); err != nil {
			return CollectionOut{}, err
		}
	}

	return CollectionOut{
		ID:        collection.UUID,
		Slug:      collection.Slug,
		Name:      collection.Name,
		Note:      collection.Note,
		Public:    collection.Public,
		Owner:     collection.Owner.Username,
		Likes:     likes,
		LikedByMe: likedByMe,
	}, nil
}

func (s *collectionService) Get(ctx context.Context, authUser auth.AuthenticatedUser) (*OverviewOut, error) {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, err
	}

	if err := s.ensureProfile(ctx, caller); err != nil {
		return nil, err
	}

	owned, err := s.collectionRepo.GetOwned(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	shared, err := s.collectionRepo.GetShared(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	overview := &OverviewOut{
		OwnedCollections:  make([]CollectionOut, 0, len(owned)),
		SharedCollections: make([]CollectionOut, 0, len(shared)),
	}

	for i := range owned {
		out, err := s.toOut(ctx, &owned[i], caller.ID)
		if err != nil {
			return nil, err
		}
		overview.OwnedCollections = append(overview.OwnedCollections, out)
	}
	for i := range shared {
		out, err := s.toOut(ctx, &shared[i], caller.ID)
		if err != nil {
			return nil, err
		}
		overview.SharedCollections = append(overview.SharedCollections, out)
	}

	return overview, nil
}

// ensureProfile lazily creates the distinguished profile collection the
// first time an owner lists their collections.
func (s *collectionService) ensureProfile(ctx context.Context, owner *user.User) error {
	_, found, err := s.collectionRepo.GetBySlug(ctx, owner.ID, ProfileSlug)
	if err != nil || found {
		return err
	}

	err = s.collectionRepo.Create(ctx, &Collection{
		UUID:    utils.GenerateUuid(),
		Slug:    ProfileSlug,
		OwnerID: owner.ID,
		Name:    "Profile",
		Public:  true,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Raced with a concurrent first listing, the profile exists now
		return nil
	}

	return err
}

func (s *collectionService) Create(ctx context.Context, req CollectionIn, authUser auth.AuthenticatedUser) (*CollectionOut, error) {
	if !utils.IsValidSlug(req.Slug) {
		return nil, utils.ErrorInvalidSlug
	}

	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, err
	}

	newCollection := &Collection{
		UUID:    utils.GenerateUuid(),
		Slug:    req.Slug,
		OwnerID: caller.ID,
		Owner:   *caller,
		Name:    req.Name,
		Note:    req.Note,
		Public:  false,
	}

	if err := s.collectionRepo.Create(ctx, newCollection); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrorCollectionExists
		}
		return nil, err
	}

	out, err := s.toOut(ctx, newCollection, caller.ID)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (s *collectionService) GetDetail(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) (*CollectionDetailOut, error) {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, err
	}

	collection, err := s.resolveTarget(ctx, caller, ownerUsername, slug)
	if err != nil {
		return nil, err
	}

	access, err := s.accessResolver.Resolve(ctx, caller.ID, collection)
	if err != nil {
		return nil, err
	}
	if !access.CanRead() {
		return nil, utils.ErrorForbidden
	}

	return s.detail(ctx, collection, caller.ID)
}

func (s *collectionService) detail(ctx context.Context, collection *Collection, viewerId uint) (*CollectionDetailOut, error) {
	out, err := s.toOut(ctx, collection, viewerId)
	if err != nil {
		return nil, err
	}

	items, err := s.collectionRepo.GetItems(ctx, collection.ID)
	if err != nil {
		return nil, err
	}

	return &CollectionDetailOut{
		CollectionOut: out,
		Items: lo.Map(items, func(item CollectionItem, _ int) ItemOut {
			return ItemToOut(&item)
		}),
	}, nil
}

func (s *collectionService) Update(ctx context.Context, slug string, req CollectionUpdateIn, authUser auth.AuthenticatedUser) (*CollectionOut, error) {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, err
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, caller.ID, slug)
	if err != nil {
		return nil, err
	} else if !found {
		return nil, utils.ErrorNotFound
	}

	if collection.Slug == ProfileSlug && req.Public != nil && !*req.Public {
		return nil, utils.ErrorProfilePrivate
	}

	if req.Name != nil {
		collection.Name = *req.Name
	}
	if req.Note != nil {
		collection.Note = *req.Note
	}
	if req.Public != nil {
		collection.Public = *req.Public
	}

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}

	out, err := s.toOut(ctx, collection, caller.ID)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (s *collectionService) AddItem(ctx context.Context, slug string, req ItemIn, authUser auth.AuthenticatedUser) (*ItemOut, error) {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, err
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, caller.ID, slug)
	if err != nil {
		return nil, err
	} else if !found {
		return nil, utils.ErrorNotFound
	}

	switch req.Kind {
	case ItemKindChannel:
		return s.addChannelItem(ctx, collection, req)
	case ItemKindVideo:
		return s.addVideoItem(ctx, collection, req, authUser)
	}

	return nil, utils.ErrorValidationError
}

func (s *collectionService) addChannelItem(ctx context.Context, collection *Collection, req ItemIn) (*ItemOut, error) {
	item := &CollectionItem{}

	err := s.collectionRepo.Transaction(ctx, func(tx *gorm.DB, txRepo Repository) error {
		channel, err := s.catalogRepo.WithTx(tx).UpsertChannel(ctx, &catalog.Channel{
			ExternalID:   req.ExternalID,
			Title:        req.Title,
			ThumbnailURL: req.ThumbnailURL,
		})
		if err != nil {
			return err
		}

		*item = CollectionItem{
			UUID:         utils.GenerateUuid(),
			CollectionID: collection.ID,
			ChannelID:    &channel.ID,
			Channel:      channel,
		}

		return txRepo.CreateItem(ctx, item)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, utils.ErrorDuplicateItem
	} else if err != nil {
		return nil, err
	}

	out := ItemToOut(item)
	return &out, nil
}

// addVideoItem catalogs the video on first sight, which needs a live
// Google client for the metadata lookup. The parent channel lookup is best
// effort, a failure there records a placeholder title instead of aborting.
func (s *collectionService) addVideoItem(ctx context.Context, collection *Collection, req ItemIn, authUser auth.AuthenticatedUser) (*ItemOut, error) {
	video, cataloged, err := s.catalogRepo.GetVideoByExternalId(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}

	item := &CollectionItem{}

	if cataloged {
		err := s.collectionRepo.Transaction(ctx, func(tx *gorm.DB, txRepo Repository) error {
			*item = CollectionItem{
				UUID:         utils.GenerateUuid(),
				CollectionID: collection.ID,
				VideoID:      &video.ID,
				Video:        video,
			}
			return txRepo.CreateItem(ctx, item)
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrorDuplicateItem
		} else if err != nil {
			return nil, err
		}

		out := ItemToOut(item)
		return &out, nil
	}

	token, err := s.tokenManager.EnsureFresh(ctx, authUser.UserId)
	if err != nil {
		return nil, err
	}
	client := s.buildClient(s.tokenManager.Client(ctx, token))

	meta, err := client.Video(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}

	channelMeta := s.lookupParentChannel(ctx, client, meta.ChannelID)

	err = s.collectionRepo.Transaction(ctx, func(tx *gorm.DB, txRepo Repository) error {
		txCatalog := s.catalogRepo.WithTx(tx)

		channel, err := txCatalog.UpsertChannel(ctx, channelMeta)
		if err != nil {
			return err
		}

		newVideo := &catalog.Video{
			ExternalID:   meta.ID,
			Title:        meta.Title,
			ThumbnailURL: meta.ThumbnailURL,
			ChannelID:    channel.ID,
			Channel:      *channel,
		}
		if err := txCatalog.CreateVideo(ctx, newVideo); err != nil {
			return err
		}

		*item = CollectionItem{
			UUID:         utils.GenerateUuid(),
			CollectionID: collection.ID,
			VideoID:      &newVideo.ID,
			Video:        newVideo,
		}

		return txRepo.CreateItem(ctx, item)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, utils.ErrorDuplicateItem
	} else if err != nil {
		return nil, err
	}

	out := ItemToOut(item)
	return &out, nil
}

func (s *collectionService) lookupParentChannel(ctx context.Context, client *youtube.Client, channelId string) *catalog.Channel {
	meta, err := client.Channel(ctx, channelId)
	if err != nil {
		log.Warn("Failed to fetch parent channel, recording placeholder.", "channel", channelId, "error", err.Error())
		return &catalog.Channel{
			ExternalID: channelId,
			Title:      "(unknown channel)",
		}
	}

	now := time.Now()
	return &catalog.Channel{
		ExternalID:           meta.ID,
		Title:                meta.Title,
		ThumbnailURL:         meta.ThumbnailURL,
		SubscriberCount:      meta.SubscriberCount,
		ThumbnailRefreshedAt: &now,
	}
}

func (s *collectionService) RemoveItem(ctx context.Context, slug string, itemId string, authUser auth.AuthenticatedUser) error {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return err
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, caller.ID, slug)
	if err != nil {
		return err
	} else if !found {
		return utils.ErrorNotFound
	}

	item, found, err := s.collectionRepo.GetItemByUuid(ctx, collection.ID, itemId)
	if err != nil {
		return err
	} else if !found {
		return utils.ErrorNotFound
	}

	return s.collectionRepo.DeleteItem(ctx, item)
}

func (s *collectionService) Like(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) error {
	caller, collection, err := s.resolveLikeTarget(ctx, ownerUsername, slug, authUser)
	if err != nil {
		return err
	}

	return s.collectionRepo.CreateLike(ctx, &CollectionLike{
		UserID:       caller.ID,
		CollectionID: collection.ID,
	})
}

func (s *collectionService) Unlike(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) error {
	caller, collection, err := s.resolveLikeTarget(ctx, ownerUsername, slug, authUser)
	if err != nil {
		return err
	}

	return s.collectionRepo.DeleteLike(ctx, caller.ID, collection.ID)
}

// resolveLikeTarget applies one consistent rule: liking needs read access,
// and owners cannot like their own collection.
func (s *collectionService) resolveLikeTarget(ctx context.Context, ownerUsername string, slug string, authUser auth.AuthenticatedUser) (*user.User, *Collection, error) {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return nil, nil, err
	}

	collection, err := s.resolveTarget(ctx, caller, ownerUsername, slug)
	if err != nil {
		return nil, nil, err
	}

	access, err := s.accessResolver.Resolve(ctx, caller.ID, collection)
	if err != nil {
		return nil, nil, err
	}

	switch access {
	case AccessOwner:
		return nil, nil, utils.ErrorOwnerLike
	case AccessDenied:
		return nil, nil, utils.ErrorForbidden
	}

	return caller, collection, nil
}

func (s *collectionService) GrantAccess(ctx context.Context, slug string, req GrantIn, authUser auth.AuthenticatedUser) error {
	caller, err := s.caller(ctx, authUser)
	if err != nil {
		return err
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, caller.ID, slug)
	if err != nil {
		return err
	} else if !found {
		return utils.ErrorNotFound
	}

	target, exists, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return err
	} else if !exists {
		return utils.ErrorUserNotFound
	}

	if target.ID == caller.ID {
		return utils.ErrorSelfGrant
	}

	return s.collectionRepo.CreateGrant(ctx, &CollectionAccessGrant{
		UserID:       target.ID,
		CollectionID: collection.ID,
	})
}

// GetPublic serves the anonymous read path. It filters strictly on the
// public flag and never consults the access resolver; private collections
// are indistinguishable from absent ones here.
func (s *collectionService) GetPublic(ctx context.Context, username string, slug string, authUser *auth.AuthenticatedUser) (*CollectionDetailOut, error) {
	owner, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	} else if !exists {
		return nil, utils.ErrorNotFound
	}

	collection, found, err := s.collectionRepo.GetBySlug(ctx, owner.ID, slug)
	if err != nil {
		return nil, err
	} else if !found || !collection.Public {
		return nil, utils.ErrorNotFound
	}

	viewerId := uint(0)
	if authUser != nil {
		if viewer, err := s.userRepo.GetByUuid(ctx, authUser.UserId); err == nil {
			viewerId = viewer.ID
		}
	}

	return s.detail(ctx, collection, viewerId)
}
