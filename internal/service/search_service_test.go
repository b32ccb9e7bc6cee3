package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

type fakeSearchStore struct {
	rows      []models.SearchResult
	upsertErr error
	selectErr error
	upserts   [][]models.SearchResult
	selects   int
	lastType  *models.ScheduleType
}

func (f *fakeSearchStore) Upsert(_ context.Context, results []models.SearchResult) error {
	f.upserts = append(f.upserts, results)
	return f.upsertErr
}

func (f *fakeSearchStore) Select(_ context.Context, _ models.ScheduleSearchQuery, typ *models.ScheduleType) ([]models.SearchResult, error) {
	f.selects++
	f.lastType = typ
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.rows, nil
}

func newSearchService(searcher *fakeSearcher, store *fakeSearchStore) *SearchService {
	return NewSearchService(searcher, store, 16, time.Minute, zap.NewNop())
}

func searchRow(id int64, name string, typ models.ScheduleType) models.SearchResult {
	return models.SearchResult{ID: id, Name: name, Type: typ}
}

func typePtr(t models.ScheduleType) *models.ScheduleType { return &t }

func TestSearchRejectsShortQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	store := &fakeSearchStore{}
	svc := newSearchService(searcher, store)

	_, err := svc.Search(context.Background(), "и", nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsUser(err))
	assert.Zero(t, searcher.calls)
	assert.Zero(t, store.selects)
}

func TestSearchMergesGroupsAndPersonsWhenUntyped(t *testing.T) {
	searcher := &fakeSearcher{results: map[models.ScheduleType][]upstream.SearchResult{
		models.ScheduleTypeGroup: {
			{ID: 101, Label: "ИВТ-01", Type: "group"},
		},
		models.ScheduleTypePerson: {
			{ID: 202, Label: "Иванов Иван Иванович", Description: "Кафедра ВМСС", Type: "person"},
		},
	}}
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(101, "ИВТ-01", models.ScheduleTypeGroup),
		searchRow(202, "Иванов Иван Иванович", models.ScheduleTypePerson),
	}}
	svc := newSearchService(searcher, store)

	results, err := svc.Search(context.Background(), "ив", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, searcher.calls, "untyped search asks for groups and persons")
	require.Len(t, store.upserts, 1)
	require.Len(t, store.upserts[0], 2)
	assert.Equal(t, models.ScheduleTypeGroup, store.upserts[0][0].Type)
	assert.Equal(t, models.ScheduleTypePerson, store.upserts[0][1].Type)

	require.Len(t, results, 2)
	assert.Nil(t, store.lastType)
}

func TestSearchTypedQueriesSingleType(t *testing.T) {
	searcher := &fakeSearcher{results: map[models.ScheduleType][]upstream.SearchResult{
		models.ScheduleTypeGroup: {{ID: 101, Label: "ИВТ-01", Type: "group"}},
	}}
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(101, "ИВТ-01", models.ScheduleTypeGroup),
	}}
	svc := newSearchService(searcher, store)

	_, err := svc.Search(context.Background(), "ивт", typePtr(models.ScheduleTypeGroup))
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	require.NotNil(t, store.lastType)
	assert.Equal(t, models.ScheduleTypeGroup, *store.lastType)
}

func TestSearchProviderDownFallsBackToStore(t *testing.T) {
	providerDown := appErrors.Gateway(errors.New("connect timeout"), "timetable provider is unreachable")
	searcher := &fakeSearcher{errs: map[models.ScheduleType]error{
		models.ScheduleTypeGroup:  providerDown,
		models.ScheduleTypePerson: providerDown,
	}}
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(101, "ИВТ-01", models.ScheduleTypeGroup),
		searchRow(202, "Иванов Иван Иванович", models.ScheduleTypePerson),
	}}
	svc := newSearchService(searcher, store)

	results, err := svc.Search(context.Background(), "ив", nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Empty(t, store.upserts, "nothing to mirror when the provider is down")
}

func TestSearchRanksByEarliestMatch(t *testing.T) {
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(1, "Автоматизация", models.ScheduleTypeGroup),
		searchRow(2, "ВТ-01", models.ScheduleTypeGroup),
		searchRow(3, "Сидоров Петр Петрович", models.ScheduleTypePerson),
	}}
	svc := newSearchService(&fakeSearcher{}, store)

	results, err := svc.Search(context.Background(), "вт", nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "ВТ-01", results[0].Name)
	assert.Equal(t, "Автоматизация", results[1].Name)
	assert.Equal(t, "Сидоров Петр Петрович", results[2].Name)
}

func TestSearchDistantMatchTiesWithMisses(t *testing.T) {
	// "ов" sits at character 5 of "Сидоров", past the list length of 3,
	// so the row ties with the no-match row and keeps its position.
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(1, "Сидоров Петр", models.ScheduleTypePerson),
		searchRow(2, "ИВТ-01", models.ScheduleTypeGroup),
		searchRow(3, "Новиков Андрей", models.ScheduleTypePerson),
	}}
	svc := newSearchService(&fakeSearcher{}, store)

	results, err := svc.Search(context.Background(), "ов", nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "Новиков Андрей", results[0].Name)
	assert.Equal(t, "Сидоров Петр", results[1].Name)
	assert.Equal(t, "ИВТ-01", results[2].Name)
}

func TestSearchCachesResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[models.ScheduleType][]upstream.SearchResult{
		models.ScheduleTypeGroup: {{ID: 101, Label: "ИВТ-01", Type: "group"}},
	}}
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(101, "ИВТ-01", models.ScheduleTypeGroup),
	}}
	svc := newSearchService(searcher, store)

	first, err := svc.Search(context.Background(), "ивт", nil)
	require.NoError(t, err)
	callsAfterFirst := searcher.calls

	second, err := svc.Search(context.Background(), "ивт", nil)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, searcher.calls, "a repeated query is served from memory")
	assert.Equal(t, 1, store.selects)
	assert.Equal(t, first, second)

	// The same text with an explicit type is a different query.
	_, err = svc.Search(context.Background(), "ивт", typePtr(models.ScheduleTypeGroup))
	require.NoError(t, err)
	assert.Equal(t, 2, store.selects)
}

func TestSearchSkipsUnknownProviderTypes(t *testing.T) {
	searcher := &fakeSearcher{results: map[models.ScheduleType][]upstream.SearchResult{
		models.ScheduleTypeGroup: {
			{ID: 101, Label: "ИВТ-01", Type: "group"},
			{ID: 999, Label: "М-710", Type: "auditorium"},
		},
	}}
	store := &fakeSearchStore{rows: []models.SearchResult{
		searchRow(101, "ИВТ-01", models.ScheduleTypeGroup),
	}}
	svc := newSearchService(searcher, store)

	_, err := svc.Search(context.Background(), "ивт", typePtr(models.ScheduleTypeGroup))
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	require.Len(t, store.upserts[0], 1)
	assert.Equal(t, int64(101), store.upserts[0][0].ID)
}

func TestSearchUpsertFailureFails(t *testing.T) {
	upsertErr := errors.New("connection refused")
	searcher := &fakeSearcher{results: map[models.ScheduleType][]upstream.SearchResult{
		models.ScheduleTypeGroup: {{ID: 101, Label: "ИВТ-01", Type: "group"}},
	}}
	store := &fakeSearchStore{upsertErr: upsertErr}
	svc := newSearchService(searcher, store)

	_, err := svc.Search(context.Background(), "ивт", typePtr(models.ScheduleTypeGroup))
	assert.ErrorIs(t, err, upsertErr)
}

func TestSearchSelectFailureFails(t *testing.T) {
	selectErr := errors.New("connection refused")
	store := &fakeSearchStore{selectErr: selectErr}
	svc := newSearchService(&fakeSearcher{}, store)

	_, err := svc.Search(context.Background(), "ивт", nil)
	assert.ErrorIs(t, err, selectErr)
}
