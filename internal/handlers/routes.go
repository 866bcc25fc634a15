package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:         deps.Users,
		Sessions:      deps.Sessions,
		Relay:         deps.Relay,
		UploadDir:     deps.UploadDir,
		MaxUploadSize: deps.MaxUploadSize,
	}
	videos := VideoHandler{
		Videos:        deps.Videos,
		Channels:      deps.Channels,
		Relay:         deps.Relay,
		Prober:        deps.Prober,
		Sessions:      deps.Sessions,
		UploadDir:     deps.UploadDir,
		MaxUploadSize: deps.MaxUploadSize,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{Likes: deps.Likes}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Channels: deps.Channels}
	channels := ChannelHandler{Channels: deps.Channels, Stats: deps.Stats}

	authed := func(next authedHandler) http.HandlerFunc {
		return requireAuth(deps.Sessions, next)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register",
		limited(deps.AuthLimiter, "auth", limited(deps.UploadLimiter, "upload", users.Register)))
	mux.HandleFunc("POST /api/v1/users/login", limited(deps.AuthLimiter, "auth", users.Login))
	mux.HandleFunc("POST /api/v1/users/refresh-token", limited(deps.AuthLimiter, "auth", users.Refresh))
	mux.HandleFunc("POST /api/v1/users/logout", authed(users.Logout))
	mux.HandleFunc("POST /api/v1/users/change-password", authed(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/me", authed(users.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/update-account", authed(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar",
		limited(deps.UploadLimiter, "upload", authed(users.UpdateAvatar)))
	mux.HandleFunc("PATCH /api/v1/users/cover-image",
		limited(deps.UploadLimiter, "upload", authed(users.UpdateCoverImage)))
	mux.HandleFunc("GET /api/v1/users/history", authed(channels.WatchHistory))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos",
		limited(deps.UploadLimiter, "upload", authed(videos.Publish)))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", authed(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", authed(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/toggle-publish", authed(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/videos/{videoId}/comments", comments.ListForVideo)
	mux.HandleFunc("POST /api/v1/videos/{videoId}/comments", authed(comments.Create))
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", authed(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", authed(comments.Delete))

	mux.HandleFunc("POST /api/v1/likes/video/{videoId}", authed(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/comment/{commentId}", authed(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/tweet/{tweetId}", authed(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", authed(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/tweets", authed(tweets.Create))
	mux.HandleFunc("GET /api/v1/users/{userId}/tweets", tweets.ListByUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", authed(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", authed(tweets.Delete))

	mux.HandleFunc("POST /api/v1/playlists", authed(playlists.Create))
	mux.HandleFunc("GET /api/v1/users/{userId}/playlists", authed(playlists.ListByUser))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", authed(playlists.Get))
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", authed(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", authed(playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{playlistId}/videos/{videoId}", authed(playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", authed(playlists.RemoveVideo))

	mux.HandleFunc("POST /api/v1/subscriptions/{channelId}", authed(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/users/{userId}/subscriptions", subscriptions.SubscribedChannels)

	mux.HandleFunc("GET /api/v1/channels/{username}", authed(channels.Profile))
	mux.HandleFunc("GET /api/v1/channels/{channelId}/stats", authed(channels.ChannelStats))
	mux.HandleFunc("GET /api/v1/channels/{channelId}/videos", channels.ChannelVideos)
	mux.HandleFunc("GET /api/v1/channels/{channelId}/subscribers", subscriptions.Subscribers)
}

// limited gates a handler behind the given rate limiter scope, answering
// 429 when the caller's budget is exhausted.
func limited(limiter RateLimiter, scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRequest(limiter, r, scope) {
			respondError(r.Context(), w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	}
}
