package story_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
	story "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
)

type fakeStore struct {
	writeErr error
	readErr  error
	readTbl  *table.Table

	writes      []*table.Table
	writeTable  string
	incremental bool
	readTable   string
}

func (f *fakeStore) WriteTable(_ context.Context, tableID string, t *table.Table, incremental bool) error {
	f.writeTable = tableID
	f.incremental = incremental
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, t)
	return nil
}

func (f *fakeStore) ReadTable(_ context.Context, tableID string) (*table.Table, error) {
	f.readTable = tableID
	return f.readTbl, f.readErr
}

var testCfg = story.Config{
	InputTable:  "in.c-generator-data.story",
	OutputTable: "out.c-fairytale-ai-pipeline.story",
}

func fixedClock() time.Time {
	return time.Date(2024, time.May, 1, 9, 5, 7, 0, time.Local)
}

func newService(store story.TableStore, opts ...story.Option) *story.Service {
	idx := book.NewIndex([]book.Book{{ID: "7", Title: "Cinderella"}, {ID: "42", Title: "The Snow Queen"}})
	opts = append([]story.Option{story.WithClock(fixedClock)}, opts...)
	return story.NewService(store, idx, testCfg, opts...)
}

func TestBuildRequestUsesClock(t *testing.T) {
	svc := newService(&fakeStore{})

	req := svc.BuildRequest(storymodel.Form{
		MainCharacter:    " Fox ",
		InspirationLabel: "Cinderella (7)",
	})

	assert.Equal(t, fixedClock().Format(storymodel.TimestampLayout), req.Timestamp)
	assert.Equal(t, "2024-05-01 09:05:07", req.Timestamp)
	assert.Equal(t, " Fox ", req.MainCharacter)
	require.NotNil(t, req.InspirationBookID)
	assert.Equal(t, "7", *req.InspirationBookID)
	require.NotNil(t, req.InspirationBookTitle)
	assert.Equal(t, "Cinderella (7)", *req.InspirationBookTitle)
}

func TestBuildRequestWithoutInspiration(t *testing.T) {
	req := newService(&fakeStore{}).BuildRequest(storymodel.Form{})
	assert.Nil(t, req.InspirationBookID)
	assert.Nil(t, req.InspirationBookTitle)

	req = newService(&fakeStore{}).BuildRequest(storymodel.Form{InspirationLabel: "  "})
	assert.Nil(t, req.InspirationBookTitle)
}

func TestSubmitStoresTextAsEntered(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	problem := "  A dragon stole the moon.\nNobody noticed.  "
	_, err := svc.Submit(context.Background(), storymodel.Form{
		MainCharacter: "\tLittle Fox",
		MainProblem:   problem,
	})
	require.NoError(t, err)

	require.Len(t, store.writes, 1)
	v, _ := store.writes[0].Value(0, storymodel.ColumnMainProblem)
	assert.Equal(t, problem, v)
	v, _ = store.writes[0].Value(0, storymodel.ColumnMainCharacter)
	assert.Equal(t, "\tLittle Fox", v)
}

func TestBuildRequestUnknownInspiration(t *testing.T) {
	req := newService(&fakeStore{}).BuildRequest(storymodel.Form{InspirationLabel: "Unknown (0)"})
	assert.Nil(t, req.InspirationBookID)
	require.NotNil(t, req.InspirationBookTitle)
}

func TestSubmitWritesOneRow(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	req, err := svc.Submit(context.Background(), storymodel.Form{MainCharacter: "Fox", TargetLanguage: "Czech"})
	require.NoError(t, err)

	require.Len(t, store.writes, 1)
	assert.Equal(t, testCfg.InputTable, store.writeTable)
	assert.False(t, store.incremental)
	assert.Equal(t, 1, store.writes[0].Len())
	v, _ := store.writes[0].Value(0, storymodel.ColumnTimestamp)
	assert.Equal(t, req.Timestamp, v)
	v, _ = store.writes[0].Value(0, storymodel.ColumnTargetLanguage)
	assert.Equal(t, "Czech", v)
}

func TestSubmitRemoteFailure(t *testing.T) {
	cause := errors.New("boom")
	svc := newService(&fakeStore{writeErr: cause})

	_, err := svc.Submit(context.Background(), storymodel.Form{})

	var remote *story.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "write", remote.Op)
	assert.ErrorIs(t, err, cause)
}

func TestSubmitWithoutConnection(t *testing.T) {
	connErr := errors.New("missing token")
	svc := newService(nil, story.WithConnectionError(connErr))

	_, err := svc.Submit(context.Background(), storymodel.Form{})
	assert.ErrorIs(t, err, story.ErrConnectionUnavailable)
	assert.False(t, svc.Available())
	assert.Equal(t, connErr, svc.ConnectionError())
}

func TestFetchLatestWithoutConnection(t *testing.T) {
	svc := newService(nil)
	_, err := svc.FetchLatest(context.Background())
	assert.ErrorIs(t, err, story.ErrConnectionUnavailable)
	assert.ErrorIs(t, svc.ConnectionError(), story.ErrConnectionUnavailable)
}

func TestAvailableWithStore(t *testing.T) {
	svc := newService(&fakeStore{})
	assert.True(t, svc.Available())
	assert.NoError(t, svc.ConnectionError())
}

func TestFetchLatestEmpty(t *testing.T) {
	for name, tbl := range map[string]*table.Table{
		"nil":         nil,
		"header only": table.New("fairytale"),
	} {
		t.Run(name, func(t *testing.T) {
			latest, err := newService(&fakeStore{readTbl: tbl}).FetchLatest(context.Background())
			require.NoError(t, err)
			assert.Equal(t, story.LatestEmpty, latest.Kind)
		})
	}
}

func TestFetchLatestTakesLastRow(t *testing.T) {
	tbl := table.New("fairytale", "timestamp", "main_character")
	require.NoError(t, tbl.Append("newer", "2024-05-02 10:00:00", "Owl"))
	require.NoError(t, tbl.Append("older", "2024-05-01 10:00:00", "Fox"))

	store := &fakeStore{readTbl: tbl}
	latest, err := newService(store).FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testCfg.OutputTable, store.readTable)
	require.Equal(t, story.LatestStory, latest.Kind)
	assert.Equal(t, "older", latest.Story.Fairytale)
	assert.Equal(t, "Fox", latest.Story.MainCharacter.Value)
	assert.False(t, latest.Story.Location.Present)
}

func TestFetchLatestByTimestamp(t *testing.T) {
	tbl := table.New("fairytale", "timestamp")
	require.NoError(t, tbl.Append("newer", "2024-05-02 10:00:00"))
	require.NoError(t, tbl.Append("garbled", "yesterday"))
	require.NoError(t, tbl.Append("older", "2024-05-01 10:00:00"))

	cfg := testCfg
	cfg.LatestByTimestamp = true
	svc := story.NewService(&fakeStore{readTbl: tbl}, nil, cfg)

	latest, err := svc.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, story.LatestStory, latest.Kind)
	assert.Equal(t, "newer", latest.Story.Fairytale)
}

func TestFetchLatestMissingTextColumn(t *testing.T) {
	tbl := table.New("story_text", "timestamp")
	require.NoError(t, tbl.Append("Once", "2024-05-01 10:00:00"))

	latest, err := newService(&fakeStore{readTbl: tbl}).FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, story.LatestRaw, latest.Kind)
	assert.Equal(t, []string{"story_text", "timestamp"}, latest.Columns)
	assert.Same(t, tbl, latest.Table)
	assert.Nil(t, latest.Story)
}

func TestFetchLatestRemoteFailure(t *testing.T) {
	_, err := newService(&fakeStore{readErr: errors.New("timeout")}).FetchLatest(context.Background())

	var remote *story.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "read", remote.Op)
	assert.Equal(t, testCfg.OutputTable, remote.Table)
}
