package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GenerateBoulderPath accepts a wall photo and returns the annotated route
// as image/png.
const GenerateBoulderPath = "/boulder/generate"

// Image is an upload-ready image.
type Image struct {
	Data     []byte
	Filename string
	MIMEType string
}

// pathf builds a path from a format with %s verbs, escaping each segment.
func pathf(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, args...)
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s required", name)
	}
	return nil
}

// GenerateBoulder uploads a wall photo and returns the generated route image.
func (c *Client) GenerateBoulder(ctx context.Context, img Image) ([]byte, error) {
	return c.Upload(ctx, Upload{
		Path:     GenerateBoulderPath,
		Data:     img.Data,
		Filename: img.Filename,
		MIMEType: img.MIMEType,
	})
}

// OpenAPI fetches the backend's schema. It doubles as a connection test.
func (c *Client) OpenAPI(ctx context.Context) ([]byte, error) {
	return c.RequestData(ctx, http.MethodGet, "/openapi.json")
}

// Routes

func (c *Client) CreateRoute(ctx context.Context, body CreateRouteBody) (Route, error) {
	return Do[Route](ctx, c, Request{Method: http.MethodPost, Path: "/api/routes", Body: body})
}

// UploadRouteImage attaches a wall photo to an existing route.
func (c *Client) UploadRouteImage(ctx context.Context, routeID string, img Image) (Route, error) {
	if err := requireID("route id", routeID); err != nil {
		return Route{}, err
	}
	return uploadDecode[Route](ctx, c, Upload{
		Path:     pathf("/api/routes/%s/upload", routeID),
		Data:     img.Data,
		Filename: img.Filename,
		MIMEType: img.MIMEType,
		Fields:   map[string]string{"routeId": routeID},
	})
}

func (c *Client) RequestRouteAnalysis(ctx context.Context, routeID string) (GenericResponse, error) {
	if err := requireID("route id", routeID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPost, Path: pathf("/api/routes/%s/analyze", routeID)})
}

func (c *Client) RouteAnalysis(ctx context.Context, routeID string) (RouteAnalysis, error) {
	if err := requireID("route id", routeID); err != nil {
		return RouteAnalysis{}, err
	}
	return Do[RouteAnalysis](ctx, c, Request{Method: http.MethodGet, Path: pathf("/api/routes/%s/analysis", routeID)})
}

// Climbs

func (c *Client) CreateClimb(ctx context.Context, body CreateClimbBody) (Climb, error) {
	return Do[Climb](ctx, c, Request{Method: http.MethodPost, Path: "/api/climbs", Body: body})
}

// UploadClimbVideo attaches an mp4 of the attempt to a climb.
func (c *Client) UploadClimbVideo(ctx context.Context, climbID, userID string, video []byte, filename string) (Climb, error) {
	if err := requireID("climb id", climbID); err != nil {
		return Climb{}, err
	}
	return uploadDecode[Climb](ctx, c, Upload{
		Path:     pathf("/api/climbs/%s/upload", climbID),
		Data:     video,
		Filename: filename,
		MIMEType: "video/mp4",
		Fields:   map[string]string{"userId": userID},
	})
}

func (c *Client) ClimbAnalysis(ctx context.Context, climbID string) (ClimbAnalysis, error) {
	if err := requireID("climb id", climbID); err != nil {
		return ClimbAnalysis{}, err
	}
	return Do[ClimbAnalysis](ctx, c, Request{Method: http.MethodGet, Path: pathf("/api/climbs/%s/analysis", climbID)})
}

func (c *Client) UpdateClimb(ctx context.Context, climbID string, body UpdateClimbBody) (GenericResponse, error) {
	if err := requireID("climb id", climbID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPut, Path: pathf("/api/climbs/%s", climbID), Body: body})
}

func (c *Client) DeleteClimb(ctx context.Context, climbID string) (GenericResponse, error) {
	if err := requireID("climb id", climbID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodDelete, Path: pathf("/api/climbs/%s", climbID)})
}

// UserClimbs lists a user's climbs. Pages start at 1.
func (c *Client) UserClimbs(ctx context.Context, userID string, page int) ([]ClimbAnalysis, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	page = max(page, 1)
	path := withQuery(pathf("/api/users/%s/climbs", userID), url.Values{"page": {strconv.Itoa(page)}})
	return Do[[]ClimbAnalysis](ctx, c, Request{Method: http.MethodGet, Path: path})
}

// Users

func (c *Client) Profile(ctx context.Context, userID string) (Profile, error) {
	if err := requireID("user id", userID); err != nil {
		return Profile{}, err
	}
	return Do[Profile](ctx, c, Request{Method: http.MethodGet, Path: pathf("/api/users/%s/profile", userID)})
}

// Feed lists posts for a user. filter defaults to "all".
func (c *Client) Feed(ctx context.Context, userID string, page int, filter string) (Feed, error) {
	if err := requireID("user id", userID); err != nil {
		return Feed{}, err
	}
	if strings.TrimSpace(filter) == "" {
		filter = "all"
	}
	values := url.Values{"page": {strconv.Itoa(max(page, 1))}, "filter": {filter}}
	return Do[Feed](ctx, c, Request{Method: http.MethodGet, Path: withQuery(pathf("/api/users/%s/feed", userID), values)})
}

// Progress returns climbing progress over a range such as "week" or
// "month" (the default).
func (c *Client) Progress(ctx context.Context, userID, timeRange string) (Progress, error) {
	if err := requireID("user id", userID); err != nil {
		return Progress{}, err
	}
	if strings.TrimSpace(timeRange) == "" {
		timeRange = "month"
	}
	values := url.Values{"range": {timeRange}}
	return Do[Progress](ctx, c, Request{Method: http.MethodGet, Path: withQuery(pathf("/api/users/%s/progress", userID), values)})
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, body UpdateProfileBody) (GenericResponse, error) {
	if err := requireID("user id", userID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPut, Path: pathf("/api/users/%s", userID), Body: body})
}

func (c *Client) UpdatePrivacy(ctx context.Context, userID string, body UpdatePrivacyBody) (GenericResponse, error) {
	if err := requireID("user id", userID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPut, Path: pathf("/api/users/%s/privacy", userID), Body: body})
}

func (c *Client) Follow(ctx context.Context, userID, targetID string) (GenericResponse, error) {
	return c.userRelation(ctx, "/api/users/%s/follow/%s", userID, targetID)
}

func (c *Client) Unfollow(ctx context.Context, userID, targetID string) (GenericResponse, error) {
	return c.userRelation(ctx, "/api/users/%s/unfollow/%s", userID, targetID)
}

func (c *Client) userRelation(ctx context.Context, format, userID, targetID string) (GenericResponse, error) {
	if err := requireID("user id", userID); err != nil {
		return GenericResponse{}, err
	}
	if err := requireID("target user id", targetID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPost, Path: pathf(format, userID, targetID)})
}

func (c *Client) DeleteAccount(ctx context.Context, userID string) (GenericResponse, error) {
	if err := requireID("user id", userID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodDelete, Path: pathf("/api/users/%s", userID)})
}

func (c *Client) RemoveFollower(ctx context.Context, userID, followerID string) (GenericResponse, error) {
	if err := requireID("user id", userID); err != nil {
		return GenericResponse{}, err
	}
	if err := requireID("follower id", followerID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodDelete, Path: pathf("/api/users/%s/followers/%s", userID, followerID)})
}

// Posts

func (c *Client) CreatePost(ctx context.Context, body CreatePostBody) (GenericResponse, error) {
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPost, Path: "/api/posts", Body: body})
}

func (c *Client) DeletePost(ctx context.Context, postID string) (GenericResponse, error) {
	if err := requireID("post id", postID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodDelete, Path: pathf("/api/posts/%s", postID)})
}

func (c *Client) LikePost(ctx context.Context, postID, userID string) (GenericResponse, error) {
	return c.postReaction(ctx, "/api/posts/%s/like", postID, userID)
}

func (c *Client) UnlikePost(ctx context.Context, postID, userID string) (GenericResponse, error) {
	return c.postReaction(ctx, "/api/posts/%s/unlike", postID, userID)
}

func (c *Client) postReaction(ctx context.Context, format, postID, userID string) (GenericResponse, error) {
	if err := requireID("post id", postID); err != nil {
		return GenericResponse{}, err
	}
	body := map[string]string{"userId": userID}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPost, Path: pathf(format, postID), Body: body})
}

func (c *Client) AddComment(ctx context.Context, postID string, body AddCommentBody) (GenericResponse, error) {
	if err := requireID("post id", postID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodPost, Path: pathf("/api/posts/%s/comments", postID), Body: body})
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) (GenericResponse, error) {
	if err := requireID("comment id", commentID); err != nil {
		return GenericResponse{}, err
	}
	return Do[GenericResponse](ctx, c, Request{Method: http.MethodDelete, Path: pathf("/api/comments/%s", commentID)})
}

// Sessions

func (c *Client) StartTodaySession(ctx context.Context, userID string) (SessionStats, error) {
	return c.session(ctx, http.MethodPost, "/api/users/%s/sessions/today/start", userID, nil)
}

func (c *Client) EndTodaySession(ctx context.Context, userID string) (SessionStats, error) {
	return c.session(ctx, http.MethodPost, "/api/users/%s/sessions/today/end", userID, nil)
}

func (c *Client) TodaySession(ctx context.Context, userID string) (SessionStats, error) {
	return c.session(ctx, http.MethodGet, "/api/users/%s/sessions/today", userID, nil)
}

func (c *Client) AddTodayClimb(ctx context.Context, userID string, event ClimbEvent) (SessionStats, error) {
	return c.session(ctx, http.MethodPost, "/api/users/%s/sessions/today/climbs", userID, event)
}

func (c *Client) session(ctx context.Context, method, format, userID string, body any) (SessionStats, error) {
	if err := requireID("user id", userID); err != nil {
		return SessionStats{}, err
	}
	return Do[SessionStats](ctx, c, Request{Method: method, Path: pathf(format, userID), Body: body})
}

func uploadDecode[T any](ctx context.Context, c *Client, up Upload) (T, error) {
	var out T
	data, err := c.Upload(ctx, up)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(data, &out); err != nil {
		return out, &Error{Kind: KindDecode, Message: "Unexpected response from server.", Err: fmt.Errorf("decode %s: %w", up.Path, err)}
	}
	return out, nil
}
