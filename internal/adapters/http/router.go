package http

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/E1Shivank/whispr/internal/adapters/rtc"
	"github.com/E1Shivank/whispr/internal/adapters/signal"
	"github.com/E1Shivank/whispr/internal/app/orch"
	"github.com/E1Shivank/whispr/internal/config"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/E1Shivank/whispr/internal/storage/links"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "ct"

// ClientTokenMiddleware gives every browser a stable opaque token kept in the
// signed cookie session. It only labels connections in logs; it is not an identity.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type Deps struct {
	Orch  *orch.Orchestrator
	Links *links.Service
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	iceServers, err := rtc.ICEServers(cfg.ICEServers)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("WhisprSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		if _, err := os.Stat(cfg.StaticPath); err == nil {
			r.Static("/static", cfg.StaticPath)
			r.GET("/", func(c *gin.Context) {
				c.File(cfg.StaticPath + "/index.html")
			})
		}
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Signaling server is healthy.")
	})

	api := r.Group("/api")

	api.POST("/chat-links", createLink(deps.Links))
	api.GET("/chat-links/:chatId", getLink(deps.Links))

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Orch.Stats())
	})

	ctrl := signal.NewSignalWSController(deps.Orch, signal.Settings{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		RateEvents:     cfg.RateLimit.Events,
		RateInterval:   cfg.RateLimit.Interval,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	ws := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	}
	api.GET("/ws", ws)
	r.GET("/socket", ws)

	return r, nil
}

func createLink(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, err := svc.CreateLink(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("create chat link")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, link)
	}
}

func getLink(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, err := domain.ParseChatID(c.Param("chatId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat link not found"})
			return
		}
		link, err := svc.GetLink(c.Request.Context(), chatID)
		if errors.Is(err, links.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat link not found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("chat", string(chatID)).Msg("get chat link")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, link)
	}
}
