package collection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/domain/catalog"
	"watchlikemeBackend/domain/user"
	"watchlikemeBackend/utils"
	"watchlikemeBackend/youtube"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type collectionTestEnv struct {
	db           *gorm.DB
	service      Service
	tokenManager auth.TokenManager
	alice        *user.User
	bob          *user.User
	aliceSession auth.AuthenticatedUser
	bobSession   auth.AuthenticatedUser
}

// fakeYouTubeAPI serves the video and channel lookups the add-item flow
// performs when a video is not cataloged yet.
func fakeYouTubeAPI(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/videos":
			w.Write([]byte(`{"items":[{"id":"vid-1","snippet":{"title":"Test Video","channelId":"chan-1","thumbnails":{"medium":{"url":"https://i.example/vid-1.jpg"}}}}]}`))
		case "/channels":
			w.Write([]byte(`{"items":[{"id":"chan-1","snippet":{"title":"Test Channel","thumbnails":{"default":{"url":"https://i.example/chan-1.jpg"}}},"statistics":{"subscriberCount":"1234"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func setupCollectionTest(t *testing.T) *collectionTestEnv {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&auth.GoogleToken{},
		&catalog.Channel{},
		&catalog.Video{},
		&Collection{},
		&CollectionItem{},
		&CollectionAccessGrant{},
		&CollectionLike{},
	))

	alice := &user.User{UUID: utils.GenerateUuid(), Email: "alice@example.com", Username: "alice", DisplayName: "Alice", Role: user.RoleUser}
	bob := &user.User{UUID: utils.GenerateUuid(), Email: "bob@example.com", Username: "bob", DisplayName: "Bob", Role: user.RoleUser}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	apiServer := fakeYouTubeAPI(t)
	tokenManager := auth.CreateTokenManager(db, &oauth2.Config{})
	service := CreateService(
		CreateRepository(db),
		user.CreateRepository(db),
		catalog.CreateRepository(db),
		tokenManager,
		func(httpClient *http.Client) *youtube.Client {
			return youtube.NewClient(apiServer.URL, "test-key", httpClient)
		},
	)

	return &collectionTestEnv{
		db:           db,
		service:      service,
		tokenManager: tokenManager,
		alice:        alice,
		bob:          bob,
		aliceSession: auth.AuthenticatedUser{UserId: alice.UUID, Email: alice.Email},
		bobSession:   auth.AuthenticatedUser{UserId: bob.UUID, Email: bob.Email},
	}
}

func (env *collectionTestEnv) createCollection(t *testing.T, session auth.AuthenticatedUser, slug string) *CollectionOut {
	out, err := env.service.Create(context.Background(), CollectionIn{Name: slug, Slug: slug}, session)
	require.NoError(t, err)
	return out
}

func TestCreateCollection(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()

	out, err := env.service.Create(ctx, CollectionIn{Name: "Cooking", Slug: "cooking", Note: "pots and pans"}, env.aliceSession)
	require.NoError(t, err)
	assert.Equal(t, "cooking", out.Slug)
	assert.Equal(t, "alice", out.Owner)
	assert.False(t, out.Public, "new collections start private")
	assert.Zero(t, out.Likes)

	_, err = env.service.Create(ctx, CollectionIn{Name: "Cooking again", Slug: "cooking"}, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorCollectionExists)

	// The same slug under a different owner does not conflict
	_, err = env.service.Create(ctx, CollectionIn{Name: "Bob cooks too", Slug: "cooking"}, env.bobSession)
	assert.NoError(t, err)

	_, err = env.service.Create(ctx, CollectionIn{Name: "Bad", Slug: "Not A Slug!"}, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorInvalidSlug)
}

func TestOverviewCreatesProfile(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()

	overview, err := env.service.Get(ctx, env.aliceSession)
	require.NoError(t, err)
	require.Len(t, overview.OwnedCollections, 1)
	assert.Equal(t, ProfileSlug, overview.OwnedCollections[0].Slug)
	assert.True(t, overview.OwnedCollections[0].Public)
	assert.Empty(t, overview.SharedCollections)

	// Listing again does not create a second profile
	overview, err = env.service.Get(ctx, env.aliceSession)
	require.NoError(t, err)
	assert.Len(t, overview.OwnedCollections, 1)
}

func TestUpdateCollection(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "gaming")

	newName := "Gaming Picks"
	public := true
	out, err := env.service.Update(ctx, "gaming", CollectionUpdateIn{Name: &newName, Public: &public}, env.aliceSession)
	require.NoError(t, err)
	assert.Equal(t, "Gaming Picks", out.Name)
	assert.True(t, out.Public)

	_, err = env.service.Update(ctx, "missing", CollectionUpdateIn{Name: &newName}, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorNotFound)

	// Another user's slug is out of reach here
	_, err = env.service.Update(ctx, "gaming", CollectionUpdateIn{Name: &newName}, env.bobSession)
	assert.ErrorIs(t, err, utils.ErrorNotFound)
}

func TestProfileCannotGoPrivate(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()

	_, err := env.service.Get(ctx, env.aliceSession)
	require.NoError(t, err)

	private := false
	_, err = env.service.Update(ctx, ProfileSlug, CollectionUpdateIn{Public: &private}, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorProfilePrivate)

	// Renaming the profile is fine as long as it stays public
	newName := "About alice"
	out, err := env.service.Update(ctx, ProfileSlug, CollectionUpdateIn{Name: &newName}, env.aliceSession)
	require.NoError(t, err)
	assert.True(t, out.Public)
}

func TestAddChannelItem(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "tech")
	env.createCollection(t, env.aliceSession, "misc")

	req := ItemIn{Kind: ItemKindChannel, ExternalID: "chan-42", Title: "Some Channel", ThumbnailURL: "https://i.example/chan-42.jpg"}

	item, err := env.service.AddItem(ctx, "tech", req, env.aliceSession)
	require.NoError(t, err)
	assert.Equal(t, ItemKindChannel, item.Kind)
	require.NotNil(t, item.Channel)
	assert.Equal(t, "chan-42", item.Channel.ID)

	_, err = env.service.AddItem(ctx, "tech", req, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorDuplicateItem)

	// The same channel in a different collection is allowed
	_, err = env.service.AddItem(ctx, "misc", req, env.aliceSession)
	assert.NoError(t, err)

	// The channel row is shared, not duplicated
	var channelCount int64
	require.NoError(t, env.db.Model(&catalog.Channel{}).Count(&channelCount).Error)
	assert.EqualValues(t, 1, channelCount)
}

func TestAddVideoItem(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "talks")
	env.createCollection(t, env.aliceSession, "later")

	req := ItemIn{Kind: ItemKindVideo, ExternalID: "vid-1"}

	// No Google token linked yet, so the metadata lookup cannot run
	_, err := env.service.AddItem(ctx, "talks", req, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorGoogleAuthRequired)

	require.NoError(t, env.tokenManager.Store(ctx, env.alice.UUID, &oauth2.Token{
		AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour),
	}))

	item, err := env.service.AddItem(ctx, "talks", req, env.aliceSession)
	require.NoError(t, err)
	assert.Equal(t, ItemKindVideo, item.Kind)
	require.NotNil(t, item.Video)
	assert.Equal(t, "Test Video", item.Video.Title)
	assert.Equal(t, "chan-1", item.Video.ChannelID)

	_, err = env.service.AddItem(ctx, "talks", req, env.aliceSession)
	assert.ErrorIs(t, err, utils.ErrorDuplicateItem)

	// Second collection reuses the cataloged video without another lookup
	_, err = env.service.AddItem(ctx, "later", req, env.aliceSession)
	assert.NoError(t, err)

	var videoCount int64
	require.NoError(t, env.db.Model(&catalog.Video{}).Count(&videoCount).Error)
	assert.EqualValues(t, 1, videoCount)
}

func TestRemoveItem(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "tech")

	item, err := env.service.AddItem(ctx, "tech", ItemIn{Kind: ItemKindChannel, ExternalID: "chan-1", Title: "Chan"}, env.aliceSession)
	require.NoError(t, err)

	require.NoError(t, env.service.RemoveItem(ctx, "tech", item.ID, env.aliceSession))

	detail, err := env.service.GetDetail(ctx, "", "tech", env.aliceSession)
	require.NoError(t, err)
	assert.Empty(t, detail.Items)

	assert.ErrorIs(t, env.service.RemoveItem(ctx, "tech", item.ID, env.aliceSession), utils.ErrorNotFound)
	assert.ErrorIs(t, env.service.RemoveItem(ctx, "missing", item.ID, env.aliceSession), utils.ErrorNotFound)
}

func TestGrantAccess(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "secret")

	// Private and ungranted, bob sees nothing
	_, err := env.service.GetDetail(ctx, "alice", "secret", env.bobSession)
	assert.ErrorIs(t, err, utils.ErrorForbidden)

	require.NoError(t, env.service.GrantAccess(ctx, "secret", GrantIn{Username: "bob"}, env.aliceSession))

	detail, err := env.service.GetDetail(ctx, "alice", "secret", env.bobSession)
	require.NoError(t, err)
	assert.Equal(t, "secret", detail.Slug)
	assert.Equal(t, "alice", detail.Owner)

	// Granting twice is a no-op
	require.NoError(t, env.service.GrantAccess(ctx, "secret", GrantIn{Username: "bob"}, env.aliceSession))

	overview, err := env.service.Get(ctx, env.bobSession)
	require.NoError(t, err)
	require.Len(t, overview.SharedCollections, 1)
	assert.Equal(t, "secret", overview.SharedCollections[0].Slug)

	assert.ErrorIs(t, env.service.GrantAccess(ctx, "secret", GrantIn{Username: "alice"}, env.aliceSession), utils.ErrorSelfGrant)
	assert.ErrorIs(t, env.service.GrantAccess(ctx, "secret", GrantIn{Username: "nobody"}, env.aliceSession), utils.ErrorUserNotFound)
	assert.ErrorIs(t, env.service.GrantAccess(ctx, "missing", GrantIn{Username: "bob"}, env.aliceSession), utils.ErrorNotFound)
}

func TestLikes(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "music")
	require.NoError(t, env.service.GrantAccess(ctx, "music", GrantIn{Username: "bob"}, env.aliceSession))

	// Owners never like their own collections
	assert.ErrorIs(t, env.service.Like(ctx, "", "music", env.aliceSession), utils.ErrorOwnerLike)

	require.NoError(t, env.service.Like(ctx, "alice", "music", env.bobSession))
	// Liking twice keeps the count at one
	require.NoError(t, env.service.Like(ctx, "alice", "music", env.bobSession))

	detail, err := env.service.GetDetail(ctx, "alice", "music", env.bobSession)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.Likes)
	assert.True(t, detail.LikedByMe)

	require.NoError(t, env.service.Unlike(ctx, "alice", "music", env.bobSession))
	// Unliking without a like is not an error
	require.NoError(t, env.service.Unlike(ctx, "alice", "music", env.bobSession))

	detail, err = env.service.GetDetail(ctx, "alice", "music", env.bobSession)
	require.NoError(t, err)
	assert.Zero(t, detail.Likes)
	assert.False(t, detail.LikedByMe)
}

func TestRelikeAfterUnlike(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "music")
	require.NoError(t, env.service.GrantAccess(ctx, "music", GrantIn{Username: "bob"}, env.aliceSession))

	require.NoError(t, env.service.Like(ctx, "alice", "music", env.bobSession))
	require.NoError(t, env.service.Unlike(ctx, "alice", "music", env.bobSession))
	require.NoError(t, env.service.Like(ctx, "alice", "music", env.bobSession))

	detail, err := env.service.GetDetail(ctx, "alice", "music", env.bobSession)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.Likes)
	assert.True(t, detail.LikedByMe)
}

func TestReaddItemAfterRemove(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "tech")

	req := ItemIn{Kind: ItemKindChannel, ExternalID: "chan-1", Title: "Chan"}
	item, err := env.service.AddItem(ctx, "tech", req, env.aliceSession)
	require.NoError(t, err)
	require.NoError(t, env.service.RemoveItem(ctx, "tech", item.ID, env.aliceSession))

	readded, err := env.service.AddItem(ctx, "tech", req, env.aliceSession)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, readded.ID)

	detail, err := env.service.GetDetail(ctx, "", "tech", env.aliceSession)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "chan-1", detail.Items[0].Channel.ID)
}

func TestLikeNeedsAccess(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "music")

	public := true
	_, err := env.service.Update(ctx, "music", CollectionUpdateIn{Public: &public}, env.aliceSession)
	require.NoError(t, err)

	// Public visibility alone does not allow liking, a grant does
	assert.ErrorIs(t, env.service.Like(ctx, "alice", "music", env.bobSession), utils.ErrorForbidden)

	require.NoError(t, env.service.GrantAccess(ctx, "music", GrantIn{Username: "bob"}, env.aliceSession))
	assert.NoError(t, env.service.Like(ctx, "alice", "music", env.bobSession))
}

func TestGetPublic(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "showcase")
	env.createCollection(t, env.aliceSession, "drafts")

	public := true
	_, err := env.service.Update(ctx, "showcase", CollectionUpdateIn{Public: &public}, env.aliceSession)
	require.NoError(t, err)

	detail, err := env.service.GetPublic(ctx, "alice", "showcase", nil)
	require.NoError(t, err)
	assert.Equal(t, "showcase", detail.Slug)
	assert.False(t, detail.LikedByMe)

	// Private collections are indistinguishable from missing ones
	_, err = env.service.GetPublic(ctx, "alice", "drafts", nil)
	assert.ErrorIs(t, err, utils.ErrorNotFound)
	_, err = env.service.GetPublic(ctx, "alice", "missing", nil)
	assert.ErrorIs(t, err, utils.ErrorNotFound)
	_, err = env.service.GetPublic(ctx, "nobody", "showcase", nil)
	assert.ErrorIs(t, err, utils.ErrorNotFound)

	// A signed-in viewer with a like sees it reflected
	require.NoError(t, env.service.GrantAccess(ctx, "showcase", GrantIn{Username: "bob"}, env.aliceSession))
	require.NoError(t, env.service.Like(ctx, "alice", "showcase", env.bobSession))

	detail, err = env.service.GetPublic(ctx, "alice", "showcase", &env.bobSession)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.Likes)
	assert.True(t, detail.LikedByMe)
}

func TestGetDetailOwnAndShared(t *testing.T) {
	env := setupCollectionTest(t)
	ctx := context.Background()
	env.createCollection(t, env.aliceSession, "tech")

	_, err := env.service.AddItem(ctx, "tech", ItemIn{Kind: ItemKindChannel, ExternalID: "chan-1", Title: "Chan One"}, env.aliceSession)
	require.NoError(t, err)

	// Without an owner the caller's own collections are addressed
	detail, err := env.service.GetDetail(ctx, "", "tech", env.aliceSession)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, ItemKindChannel, detail.Items[0].Kind)

	_, err = env.service.GetDetail(ctx, "", "tech", env.bobSession)
	assert.ErrorIs(t, err, utils.ErrorNotFound)

	_, err = env.service.GetDetail(ctx, "nobody", "tech", env.bobSession)
	assert.ErrorIs(t, err, utils.ErrorNotFound)
}
