package main

import (
	"time"

	"github.com/dpperalta/crmclient/internal/api"
	"github.com/dpperalta/crmclient/internal/cache"
	"github.com/dpperalta/crmclient/internal/config"
	"github.com/dpperalta/crmclient/internal/graphql"
	"github.com/dpperalta/crmclient/internal/notify"
	"github.com/dpperalta/crmclient/internal/repository"
	"github.com/dpperalta/crmclient/internal/service"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// newStore picks redis when an address is configured, the in-process store
// otherwise.
func newStore(cfg config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	return cache.NewRedisStore(rdb)
}

func main() {
	cfg := config.Load()

	store := newStore(cfg)
	gql := graphql.NewClient(cfg.GraphQLURL, cfg.HTTPTimeout)
	events := notify.NewPublisher(cfg.KafkaBrokers, cfg.EventTopic)
	defer events.Close()

	customers := repository.NewCustomers(gql, store)
	products := repository.NewProducts(gql, store)
	orders := repository.NewOrders(gql, store)
	account := repository.NewAccount(gql)
	drafts := service.NewDraftService(orders, events)

	handler := api.NewHandler(customers, products, orders, account, drafts, events)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.SessionSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(api.SessionClaims)
		},
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/session/login", "/session/signup", "/health":
				return true
			}
			return false
		},
	}))

	handler.Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "crm-gateway",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
