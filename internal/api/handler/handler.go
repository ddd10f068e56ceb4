package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/api/middleware"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/internal/session"
)

// Deps 处理器依赖
type Deps struct {
	Auth        service.AuthService
	OAuth       service.OAuthService
	Rooms       service.RoomService
	Items       service.ItemService
	Votes       service.VoteService
	Leaderboard service.LeaderboardService
	Push        service.PushService
	Sessions    *session.Manager
	DB          *gorm.DB
	Redis       *redis.Client
	// OAuthSuccessURL is where the browser lands after a Google login.
	OAuthSuccessURL string
}

type Handler struct {
	authService        service.AuthService
	oauthService       service.OAuthService
	roomService        service.RoomService
	itemService        service.ItemService
	voteService        service.VoteService
	leaderboardService service.LeaderboardService
	pushService        service.PushService
	sessions           *session.Manager
	db                 *gorm.DB
	rdb                *redis.Client
	oauthSuccessURL    string
}

func New(d Deps) *Handler {
	successURL := d.OAuthSuccessURL
	if successURL == "" {
		successURL = "/"
	}
	return &Handler{
		authService:        d.Auth,
		oauthService:       d.OAuth,
		roomService:        d.Rooms,
		itemService:        d.Items,
		voteService:        d.Votes,
		leaderboardService: d.Leaderboard,
		pushService:        d.Push,
		sessions:           d.Sessions,
		db:                 d.DB,
		rdb:                d.Redis,
		oauthSuccessURL:    successURL,
	}
}

// roomQuery reads the optional roomId query parameter.
func roomQuery(c *gin.Context) *string {
	if v := c.Query("roomId"); v != "" {
		return &v
	}
	return nil
}

func currentUser(c *gin.Context) string { return middleware.UserID(c) }
