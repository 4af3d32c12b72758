package gateway

import "time"

// GenericResponse is returned by calls that only acknowledge.
type GenericResponse struct {
	Message string `json:"message"`
}

// ClimbStatus is how an attempt on a route ended.
type ClimbStatus string

const (
	ClimbFlash   ClimbStatus = "flash"
	ClimbSent    ClimbStatus = "sent"
	ClimbAttempt ClimbStatus = "attempt"
	ClimbProject ClimbStatus = "project"
)

// RouteType is the discipline a route is set for.
type RouteType string

const (
	RouteBoulder RouteType = "boulder"
	RouteSport   RouteType = "sport"
	RouteTopRope RouteType = "top_rope"
	RouteTrad    RouteType = "trad"
)

// CreateRouteBody is the payload for POST /api/routes.
type CreateRouteBody struct {
	Name    string    `json:"name"`
	Grade   string    `json:"grade,omitempty"`
	Type    RouteType `json:"type"`
	GymID   string    `json:"gymId,omitempty"`
	GymName string    `json:"gymName,omitempty"`
}

// Route mirrors the saved-route payload.
type Route struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade,omitempty"`
	Type      RouteType `json:"type"`
	GymID     string    `json:"gymId,omitempty"`
	GymName   string    `json:"gymName,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hold is one detected hold in image coordinates.
type Hold struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Kind       string  `json:"kind,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Beta is one suggested way to climb a route.
type Beta struct {
	Name        string `json:"name"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
}

// RouteAnalysis mirrors GET /api/routes/{id}/analysis.
type RouteAnalysis struct {
	RouteID        string    `json:"routeId"`
	PredictedGrade string    `json:"predictedGrade"`
	Holds          []Hold    `json:"holds"`
	Betas          []Beta    `json:"betas"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

// CreateClimbBody is the payload for POST /api/climbs.
type CreateClimbBody struct {
	UserID   string      `json:"userId"`
	RouteID  string      `json:"routeId"`
	Status   ClimbStatus `json:"status"`
	Attempts int         `json:"attempts"`
	Notes    *string     `json:"notes,omitempty"`
}

// UpdateClimbBody is the payload for PUT /api/climbs/{id}. Nil fields are
// left unchanged.
type UpdateClimbBody struct {
	Status   *ClimbStatus `json:"status,omitempty"`
	Attempts *int         `json:"attempts,omitempty"`
	Notes    *string      `json:"notes,omitempty"`
}

// Climb mirrors the saved-climb payload.
type Climb struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	RouteID   string      `json:"routeId"`
	Status    ClimbStatus `json:"status"`
	Attempts  int         `json:"attempts"`
	Notes     string      `json:"notes,omitempty"`
	VideoURL  string      `json:"videoUrl,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ClimbAnalysis mirrors GET /api/climbs/{id}/analysis.
type ClimbAnalysis struct {
	ClimbID    string    `json:"climbId"`
	RouteID    string    `json:"routeId,omitempty"`
	Status     string    `json:"status"`
	Score      float64   `json:"score"`
	Feedback   []string  `json:"feedback"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Profile mirrors GET /api/users/{id}/profile.
type Profile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhotoURL     string `json:"photoURL,omitempty"`
	Followers    int    `json:"followers"`
	Following    int    `json:"following"`
	TotalClimbs  int    `json:"totalClimbs"`
	HardestGrade string `json:"hardestGrade,omitempty"`
}

// UpdateProfileBody is the payload for PUT /api/users/{id}.
type UpdateProfileBody struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	PhotoURL  *string `json:"photoURL,omitempty"`
}

// UpdatePrivacyBody is the payload for PUT /api/users/{id}/privacy.
type UpdatePrivacyBody struct {
	ProfilePublic     *bool `json:"profilePublic,omitempty"`
	ShowInLeaderboard *bool `json:"showInLeaderboard,omitempty"`
}

// Post is one entry in a feed.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ClimbID   string    `json:"climbId"`
	Caption   string    `json:"caption,omitempty"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed mirrors GET /api/users/{id}/feed.
type Feed struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"hasMore"`
}

// GradePoint is one sample in a progress series.
type GradePoint struct {
	Date  time.Time `json:"date"`
	Grade string    `json:"grade"`
	Sends int       `json:"sends"`
}

// Progress mirrors GET /api/users/{id}/progress.
type Progress struct {
	Range        string       `json:"range"`
	Sessions     int          `json:"sessions"`
	Sends        int          `json:"sends"`
	Attempts     int          `json:"attempts"`
	HardestGrade string       `json:"hardestGrade,omitempty"`
	History      []GradePoint `json:"history"`
}

// CreatePostBody is the payload for POST /api/posts.
type CreatePostBody struct {
	ClimbID string  `json:"climbId"`
	Caption *string `json:"caption,omitempty"`
}

// AddCommentBody is the payload for POST /api/posts/{id}/comments.
type AddCommentBody struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// ClimbEvent records one climb in today's session.
type ClimbEvent struct {
	Status          ClimbStatus `json:"status"`
	Attempts        int         `json:"attempts"`
	DurationSeconds int         `json:"durationSeconds"`
}

// SessionStats mirrors the today-session endpoints.
type SessionStats struct {
	Active          bool       `json:"active"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	Climbs          int        `json:"climbs"`
	Sends           int        `json:"sends"`
	Attempts        int        `json:"attempts"`
	DurationSeconds int        `json:"durationSeconds"`
}
