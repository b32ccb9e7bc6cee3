package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

type searchServiceMock struct {
	results  []models.SearchResult
	err      error
	gotQuery string
	gotType  *models.ScheduleType
	calls    int
}

func (m *searchServiceMock) Search(_ context.Context, rawQuery string, typ *models.ScheduleType) ([]models.SearchResult, error) {
	m.calls++
	m.gotQuery, m.gotType = rawQuery, typ
	return m.results, m.err
}

func newSearchRouter(h *SearchHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/search", h.Search)
	return router
}

func searchTarget(query, typ string) string {
	values := url.Values{}
	values.Set("q", query)
	if typ != "" {
		values.Set("type", typ)
	}
	return "/v1/search?" + values.Encode()
}

func TestSearchHandlerReturnsResults(t *testing.T) {
	svc := &searchServiceMock{results: []models.SearchResult{
		{ID: 8792, Name: "ИВТ-01", Description: "Институт ИВТ", Type: models.ScheduleTypeGroup},
	}}
	router := newSearchRouter(NewSearchHandler(svc))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, searchTarget("ИВТ", ""), nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ИВТ", svc.gotQuery)
	assert.Nil(t, svc.gotType)

	var results []models.SearchResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "ИВТ-01", results[0].Name)
	assert.Contains(t, recorder.Body.String(), `"id":"8792"`)
}

func TestSearchHandlerPassesExplicitType(t *testing.T) {
	svc := &searchServiceMock{}
	router := newSearchRouter(NewSearchHandler(svc))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, searchTarget("Иванов", "person"), nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, svc.gotType)
	assert.Equal(t, models.ScheduleTypePerson, *svc.gotType)
}

func TestSearchHandlerUnknownTypeIs400(t *testing.T) {
	svc := &searchServiceMock{}
	router := newSearchRouter(NewSearchHandler(svc))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, searchTarget("ИВТ", "building"), nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, svc.calls)
}

func TestSearchHandlerEmptyResultIsArray(t *testing.T) {
	router := newSearchRouter(NewSearchHandler(&searchServiceMock{}))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, searchTarget("КЦ-99", ""), nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", recorder.Body.String())
}

func TestSearchHandlerShortQueryIs400(t *testing.T) {
	svc := &searchServiceMock{err: appErrors.User("search query must be at least 2 characters long")}
	router := newSearchRouter(NewSearchHandler(svc))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, searchTarget("и", ""), nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "at least 2 characters")
}
