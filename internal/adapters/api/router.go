package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmarzotto/asta/pkg/auth"
)

// NewRouter assembles the echo instance: middleware, public routes and the
// authenticated API group
func NewRouter(
	authHandler *AuthHandler,
	itemHandler *ItemHandler,
	auctionHandler *AuctionHandler,
	signer *auth.Signer,
	logger *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	protected := v1.Group("", auth.Middleware(signer))
	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/items", itemHandler.Create)
	protected.GET("/items/:id", itemHandler.Get)
	protected.GET("/users/me/items/available", itemHandler.ListAvailable)

	protected.POST("/auctions", auctionHandler.Create)
	protected.GET("/auctions/search", auctionHandler.Search)
	protected.GET("/auctions/recent", auctionHandler.Recent)
	protected.GET("/auctions/:id", auctionHandler.Get)
	protected.GET("/auctions/:id/bids", auctionHandler.ListBids)
	protected.POST("/auctions/:id/bids", auctionHandler.PlaceBid)
	protected.GET("/auctions/:id/items", auctionHandler.ListItems)
	protected.POST("/auctions/:id/close", auctionHandler.Close)

	protected.GET("/users/me/auctions", auctionHandler.ListMine)
	protected.GET("/users/me/auctions/won", auctionHandler.ListWon)

	return e
}
