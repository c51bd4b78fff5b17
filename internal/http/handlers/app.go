package handlers

import (
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"travelbot/internal/config"
	intdb "travelbot/internal/db"
	"travelbot/internal/http/middleware"
	"travelbot/internal/intent"
	"travelbot/internal/ner"
	"travelbot/internal/repositories"
	"travelbot/internal/services"
	"travelbot/internal/travelapi"
	"travelbot/internal/ws"
)

// App carries the long-lived collaborators the handlers build their
// per-request services from. Nil DB means the shared config.DB.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Dialect    intdb.Dialect
	Classifier intent.Classifier
	Tagger     ner.Tagger
	Catalog    ner.Catalog
	Amadeus    *travelapi.Amadeus
	ZoomCar    *travelapi.ZoomCar
	FAQ        *services.FAQIndex
	Node       *snowflake.Node
	Hub        *ws.Hub
	Now        func() time.Time
}

func (a *App) store() repositories.Store {
	return repositories.Store{DB: a.DB, Dialect: a.Dialect}
}

func (a *App) cfg() *config.Config {
	if a.Config == nil {
		var c config.Config
		config.ApplyDefaults(&c)
		a.Config = &c
	}
	return a.Config
}

// Auth is the token issuer/parser shared by the auth handlers and the
// session middleware.
func (a *App) Auth() services.AuthService {
	c := a.cfg()
	return services.AuthService{
		Users:  repositories.UserRepository{Store: a.store()},
		Secret: []byte(c.Auth.JWTSecret),
		TTL:    c.Auth.TokenTTL,
		Now:    a.Now,
	}
}

func (a *App) authService(c *gin.Context) services.AuthService {
	s := a.Auth()
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (a *App) chatService(c *gin.Context) services.ChatService {
	st := a.store()
	return services.ChatService{
		Classifier: a.Classifier,
		Tagger:     a.Tagger,
		Catalog:    a.Catalog,
		Travel:     repositories.TravelRepository{Store: st},
		QueryLog:   repositories.QueryLogRepository{Store: st},
		RequestID:  middleware.GetRequestID(c),
		Now:        a.Now,
	}
}

func (a *App) searchService(c *gin.Context) services.SearchService {
	st := a.store()
	return services.SearchService{
		Travel:    repositories.TravelRepository{Store: st},
		QueryLog:  repositories.QueryLogRepository{Store: st},
		RequestID: middleware.GetRequestID(c),
	}
}

func (a *App) liveService(c *gin.Context) services.LiveService {
	return services.LiveService{
		Amadeus:   a.Amadeus,
		ZoomCar:   a.ZoomCar,
		Cache:     repositories.APICacheRepository{Store: a.store()},
		TTL:       a.cfg().Jobs.CacheTTL,
		RequestID: middleware.GetRequestID(c),
		Now:       a.Now,
	}
}

func (a *App) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  repositories.BookingRepository{Store: a.store()},
		Node:      a.Node,
		RequestID: middleware.GetRequestID(c),
		Now:       a.Now,
	}
}

func (a *App) docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		Bookings:  repositories.BookingRepository{Store: a.store()},
		RequestID: middleware.GetRequestID(c),
	}
}

func (a *App) recommendationService(c *gin.Context) services.RecommendationService {
	st := a.store()
	return services.RecommendationService{
		Travel:          repositories.TravelRepository{Store: st},
		QueryLog:        repositories.QueryLogRepository{Store: st},
		Recommendations: repositories.RecommendationRepository{Store: st},
		Amadeus:         a.Amadeus,
		RequestID:       middleware.GetRequestID(c),
	}
}

func (a *App) alertService(c *gin.Context) services.AlertService {
	return services.AlertService{
		Amadeus:   a.Amadeus,
		FAQ:       a.FAQ,
		RequestID: middleware.GetRequestID(c),
		Now:       a.Now,
	}
}
