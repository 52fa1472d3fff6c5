package handlers

import (
	"net/http"

	"github.com/clubeapp/points-engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Ledger      *LedgerHandler
	Transfers   *TransferHandler
	Admin       *AdminHandler
	Checkins    *CheckinHandler
	Checkouts   *CheckoutHandler
	RateLimiter *middleware.RateLimiter
}

// NewRouter assembles the gin engine. Redemption endpoints sit behind the
// rate limiter; reads and admin operations do not.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limited := deps.RateLimiter.Middleware()

	api := router.Group("/api")
	{
		api.GET("/users/:id/balance", deps.Ledger.Balance)
		api.GET("/users/:id/ledger", deps.Ledger.History)

		api.POST("/transfers", limited, deps.Transfers.Create)

		admin := api.Group("/admin")
		{
			admin.POST("/grant", deps.Admin.Grant)
			admin.POST("/deduct", deps.Admin.Deduct)
			admin.POST("/refund", deps.Admin.Refund)
			admin.GET("/users/:id/statement", deps.Ledger.Statement)
			admin.POST("/pdvs", deps.Checkouts.CreatePdv)
		}

		events := api.Group("/events")
		{
			events.POST("/:id/windows", deps.Checkins.ScheduleWindows)
			events.GET("/:id/checkins/:number/qr", deps.Checkins.IssueQR)
		}
		api.POST("/checkins", limited, deps.Checkins.Checkin)

		pdv := api.Group("/pdv")
		{
			pdv.POST("/checkouts", deps.Checkouts.Create)
			pdv.GET("/checkouts/:code", deps.Checkouts.Get)
			pdv.POST("/checkouts/:code/bind", limited, deps.Checkouts.Bind)
			pdv.POST("/checkouts/:code/pay", limited, deps.Checkouts.Pay)
			pdv.POST("/checkouts/:code/confirm-money", deps.Checkouts.ConfirmMoney)
			pdv.POST("/checkouts/:code/cancel", deps.Checkouts.Cancel)
		}
	}

	return router
}
