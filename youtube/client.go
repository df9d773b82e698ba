// Package youtube is a minimal client for the slice of the YouTube Data
// API v3 this service needs: video and channel lookups plus the caller's
// subscription list.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"watchlikemeBackend/utils"
)

const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Channel struct {
	ID              string
	Title           string
	ThumbnailURL    string
	SubscriberCount uint64
}

type Video struct {
	ID           string
	Title        string
	ThumbnailURL string
	ChannelID    string
}

// NewClient builds a client for one request. Public lookups authenticate
// with the API key; subscription listing needs an OAuth-backed httpClient.
func NewClient(baseURL string, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type thumbnails struct {
	Medium  *thumbnail `json:"medium"`
	Default *thumbnail `json:"default"`
}

type thumbnail struct {
	URL string `json:"url"`
}

func (t thumbnails) best() string {
	if t.Medium != nil {
		return t.Medium.URL
	}
	if t.Default != nil {
		return t.Default.URL
	}
	return ""
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// Video fetches the metadata of a single video by its external id.
func (c *Client) Video(ctx context.Context, videoId string) (*Video, error) {
	var response struct {
		Items []struct {
			Id      string `json:"id"`
			Snippet struct {
				Title      string     `json:"title"`
				ChannelId  string     `json:"channelId"`
				Thumbnails thumbnails `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}

	params := url.Values{"part": {"snippet"}, "id": {videoId}}
	if err := c.doRequest(ctx, "/videos", params, &response); err != nil {
		return nil, err
	}

	if len(response.Items) == 0 {
		return nil, utils.ErrorNotFound
	}

	item := response.Items[0]
	return &Video{
		ID:           item.Id,
		Title:        item.Snippet.Title,
		ThumbnailURL: item.Snippet.Thumbnails.best(),
		ChannelID:    item.Snippet.ChannelId,
	}, nil
}

// Channel fetches the metadata of a single channel by its external id.
func (c *Client) Channel(ctx context.Context, channelId string) (*Channel, error) {
	var response struct {
		Items []struct {
			Id      string `json:"id"`
			Snippet struct {
				Title      string     `json:"title"`
				Thumbnails thumbnails `json:"thumbnails"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount uint64 `json:"subscriberCount,string"`
			} `json:"statistics"`
		} `json:"items"`
	}

	params := url.Values{"part": {"snippet,statistics"}, "id": {channelId}}
	if err := c.doRequest(ctx, "/channels", params, &response); err != nil {
		return nil, err
	}

	if len(response.Items) == 0 {
		return nil, utils.ErrorNotFound
	}

	item := response.Items[0]
	return &Channel{
		ID:              item.Id,
		Title:           item.Snippet.Title,
		ThumbnailURL:    item.Snippet.Thumbnails.best(),
		SubscriberCount: item.Statistics.SubscriberCount,
	}, nil
}

// Subscriptions lists every channel the authorized user is subscribed to,
// following result pages until the API runs dry.
func (c *Client) Subscriptions(ctx context.Context) ([]Channel, error) {
	var response struct {
		NextPageToken string `json:"nextPageToken"`
		Items         []struct {
			Snippet struct {
				Title      string     `json:"title"`
				Thumbnails thumbnails `json:"thumbnails"`
				ResourceId struct {
					ChannelId string `json:"channelId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}

	channels := make([]Channel, 0)
	pageToken := ""

	for {
		params := url.Values{"part": {"snippet"}, "mine": {"true"}, "maxResults": {"50"}}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		response.NextPageToken = ""
		response.Items = response.Items[:0]
		if err := c.doRequest(ctx, "/subscriptions", params, &response); err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			channels = append(channels, Channel{
				ID:           item.Snippet.ResourceId.ChannelId,
				Title:        item.Snippet.Title,
				ThumbnailURL: item.Snippet.Thumbnails.best(),
			})
		}

		if response.NextPageToken == "" {
			return channels, nil
		}
		pageToken = response.NextPageToken
	}
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	apiURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return utils.ErrorGoogleUnavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.ErrorGoogleUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := apiError{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return mapApiError(resp.StatusCode, errResp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return utils.ErrorGoogleUnavailable
	}

	return nil
}

// mapApiError sorts YouTube API failures into the error taxonomy. The API
// overloads 403 for quota exhaustion, so the reason strings decide.
func mapApiError(status int, errResp apiError) error {
	for _, e := range errResp.Error.Errors {
		reason := strings.ToLower(e.Reason)
		if strings.Contains(reason, "quota") || strings.Contains(reason, "ratelimit") {
			return utils.ErrorGoogleQuotaExceeded
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return utils.ErrorGoogleAuthRequired
	case http.StatusNotFound:
		return utils.ErrorNotFound
	case http.StatusTooManyRequests:
		return utils.ErrorGoogleQuotaExceeded
	}

	return fmt.Errorf("%w: %s", utils.ErrorGoogleUnavailable, errResp.Error.Message)
}
