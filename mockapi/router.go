package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/mockapi/store"
)

const (
	postsPath  = "/posts"
	healthPath = "/health"
)

// NewRouter builds the gin engine serving the posts collection from st.
// checker may be nil.
func NewRouter(cfg Config, st *store.Store, log *logger.Logger, checker HealthChecker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = logger.Get(componentName)
	}

	engine := gin.New()
	engine.Use(
		Recovery(log),
		RequestID(),
		BodySizeLimit(cfg.maxBodyBytes()),
		RequestLogger(log),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, emptyObject)
	})

	h := &handlers{store: st, persist: cfg.Persist, checker: checker}
	engine.GET(healthPath, h.health)

	posts := engine.Group(postsPath)
	posts.GET("", h.list)
	posts.POST("", h.create)
	posts.GET("/:id", h.get)
	posts.PUT("/:id", h.replace)
	posts.PATCH("/:id", h.patch)
	posts.DELETE("/:id", h.remove)

	return engine
}
