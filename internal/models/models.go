package models

import "time"

// User represents an account on the platform. Password holds the bcrypt
// hash, never the plaintext.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the sanitized projection returned by the API. It never
// carries the credential or refresh-token fields.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public strips the credential fields from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// Video is a published (or draft) upload owned by exactly one user.
type Video struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is attached to a video and owned by its author.
type Comment struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	OwnerUsername string    `json:"ownerUsername,omitempty"`
	VideoID       string    `json:"videoId"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Tweet is a short free-standing post by a user.
type Tweet struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	OwnerUsername string    `json:"ownerUsername,omitempty"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LikeTarget selects which entity a like refers to. Exactly one target is
// set per like row.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records a (user, target) edge. TargetID is interpreted according to
// Target.
type Like struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Target    LikeTarget `json:"target"`
	TargetID  string     `json:"targetId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Playlist is an ordered, deduplicated set of video references.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription is a directed subscriber -> channel edge between users.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is the public channel view enriched with relationship
// counts, produced by the channel-profile aggregation.
type ChannelProfile struct {
	ID                   string `json:"id"`
	FullName             string `json:"fullName"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	AvatarURL            string `json:"avatar"`
	CoverImageURL        string `json:"coverImage"`
	SubscribersCount     int64  `json:"subscribersCount"`
	ChannelsSubscribedTo int64  `json:"channelsSubscribedTo"`
	IsSubscribed         bool   `json:"isSubscribed"`
}

// OwnerSummary is the denormalized owner projection embedded in watch
// history entries. Exactly these three fields, per the public contract.
type OwnerSummary struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// WatchEntry is one resolved entry of a user's watch history.
type WatchEntry struct {
	Video Video        `json:"video"`
	Owner OwnerSummary `json:"owner"`
}

// UserSummary is the lightweight user projection used in subscriber and
// subscription listings.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// ChannelVideo is a video row joined with its owner's identity, as served
// by the channel video listing.
type ChannelVideo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
	Views       int64   `json:"views"`
	Owner       string  `json:"owner"`
	OwnerEmail  string  `json:"email"`
}

// ChannelStats is the dashboard rollup for a channel. All fields are always
// present and default to zero.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
