package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restdemo/component"
	"github.com/kbukum/restdemo/errors"
	"github.com/kbukum/restdemo/mockapi/store"
	"github.com/kbukum/restdemo/observability"
	"github.com/kbukum/restdemo/resource"
	"github.com/kbukum/restdemo/version"
)

// HealthChecker reports the health of the components behind the API.
type HealthChecker func(ctx context.Context) []component.Health

type handlers struct {
	store   *store.Store
	persist bool
	checker HealthChecker
}

// emptyObject is the body upstream answers with for unknown ids and deletes.
var emptyObject = gin.H{}

func (h *handlers) list(c *gin.Context) {
	posts := h.store.List()
	if userID := c.Query("userId"); userID != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if v, ok := p.Get("userId"); ok && fmt.Sprint(v) == userID {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	p, found := h.store.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, emptyObject)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) create(c *gin.Context) {
	body, ok := readPayload(c)
	if !ok {
		return
	}
	var p *resource.Payload
	if h.persist {
		p = h.store.Create(body)
	} else {
		p = store.WithID(body, h.store.NextID())
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) replace(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	body, ok := readPayload(c)
	if !ok {
		return
	}

	var p *resource.Payload
	found := h.store.Has(id)
	if found {
		if h.persist {
			p, found = h.store.Replace(id, body)
		} else {
			p = store.WithID(body, id)
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, emptyObject)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) patch(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	body, ok := readPayload(c)
	if !ok {
		return
	}

	var p *resource.Payload
	var found bool
	if h.persist {
		p, found = h.store.Patch(id, body)
	} else {
		var cur *resource.Payload
		if cur, found = h.store.Get(id); found {
			p = store.Merge(cur, body)
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, emptyObject)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) remove(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var found bool
	if h.persist {
		found = h.store.Delete(id)
	} else {
		found = h.store.Has(id)
	}
	if !found {
		c.JSON(http.StatusNotFound, emptyObject)
		return
	}
	c.JSON(http.StatusOK, emptyObject)
}

// healthResponse is the /health body: the service health plus store stats.
type healthResponse struct {
	*observability.ServiceHealth
	Posts     int    `json:"posts"`
	Timestamp string `json:"timestamp"`
}

func (h *handlers) health(c *gin.Context) {
	sh := observability.NewServiceHealth(componentName, version.GetShortVersion())
	if h.checker != nil {
		for _, ch := range h.checker(c.Request.Context()) {
			sh.AddComponent(ch)
		}
	}

	httpStatus := http.StatusOK
	if !sh.Healthy() {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, healthResponse{
		ServiceHealth: sh,
		Posts:         h.store.Count(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// postID parses the :id parameter. Anything that is not a positive integer
// cannot name a post, so it is answered like an unknown id.
func postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, emptyObject)
		return 0, false
	}
	return id, true
}

// readPayload decodes the request body as a JSON object. An empty body is
// an empty object.
func readPayload(c *gin.Context) (*resource.Payload, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			appErr := errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				http.StatusRequestEntityTooLarge)
			abortWithError(c, appErr)
			return nil, false
		}
		respondError(c, errors.InvalidInput("body", "could not read request body").WithCause(err))
		return nil, false
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return resource.NewPayload(), true
	}
	var p resource.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		respondError(c, errors.InvalidInput("body", "expected a JSON object").WithCause(err))
		return nil, false
	}
	return &p, true
}

// respondError answers with the AppError's status and structured body, or a
// generic 500 for any other error.
func respondError(c *gin.Context, err error) {
	abortWithError(c, errors.Wrap(err))
}

func abortWithError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse(c.GetString(requestIDKey)))
}
