package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/response"
)

type searchService interface {
	Search(ctx context.Context, rawQuery string, typ *models.ScheduleType) ([]models.SearchResult, error)
}

// SearchHandler serves schedule search.
type SearchHandler struct {
	service searchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(svc searchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Search answers GET /v1/search?q=&type=.
func (h *SearchHandler) Search(c *gin.Context) {
	var typ *models.ScheduleType
	if raw := c.Query("type"); raw != "" {
		parsed, err := models.ParseScheduleType(raw)
		if err != nil {
			// In the query position an unknown type is a plain bad
			// request, unlike the 404 of the path position.
			response.Error(c, appErrors.Userf("unknown schedule type %q", raw))
			return
		}
		typ = &parsed
	}

	results, err := h.service.Search(c.Request.Context(), c.Query("q"), typ)
	if err != nil {
		response.Error(c, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	response.JSON(c, http.StatusOK, results)
}
