package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/nebula"
	"github.com/kode4food/nebula/internal/archive"
	"github.com/kode4food/nebula/internal/aurora"
	"github.com/kode4food/nebula/internal/engine"
	"github.com/kode4food/nebula/internal/server"
	"github.com/kode4food/nebula/internal/store"
	"github.com/kode4food/nebula/internal/tools"
	"github.com/kode4food/nebula/pkg/api"
)

type testServerEnv struct {
	Engine *engine.Engine
	Server *server.Server
	Router *gin.Engine
}

func testServer(t *testing.T) *testServerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := tools.NewRegistry()
	reg.Register("double", tools.Func(func(st api.State) (api.State, error) {
		return st.Set("x", st.GetInt("x", 0)*2), nil
	}))
	reg.Register("fail", tools.Func(func(api.State) (api.State, error) {
		return nil, errors.New("boom")
	}))

	eng := engine.New(store.New(), reg)
	srv := server.NewServer(eng).WithAurora(aurora.CreateGraph(eng))
	return &testServerEnv{
		Engine: eng,
		Server: srv,
		Router: srv.SetupRoutes(),
	}
}

func (e *testServerEnv) do(
	t *testing.T, method, path string, body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	res := decode[api.HealthResponse](t, w)
	assert.Equal(t, nebula.Name, res.Service)
	assert.Equal(t, nebula.Version, res.Version)
}

func TestCORSPreflight(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodOptions, "/graph/run", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateAndRunGraph(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/graph/create", api.CreateGraphRequest{
		Name:      "doubler",
		Nodes:     map[api.NodeKey]api.ToolName{"A": "double"},
		StartNode: "A",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[api.CreateGraphResponse](t, w)
	require.NotEmpty(t, created.GraphID)

	w = env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID:      created.GraphID,
		InitialState: api.State{"x": 3},
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[api.RunGraphResponse](t, w)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, float64(6), res.FinalState["x"])
	require.Len(t, res.Log, 1)
	assert.Equal(t, 0, res.Log[0].Step)
	assert.Equal(t, api.NodeKey("A"), res.Log[0].Node)
	assert.Equal(t, api.ToolName("double"), res.Log[0].Tool)
	assert.Equal(t, float64(6), res.Log[0].Snapshot["x"])

	w = env.do(t, http.MethodGet, "/graph/state/"+string(res.RunID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[api.RunStateResponse](t, w)
	assert.Equal(t, res.RunID, st.RunID)
	assert.Equal(t, created.GraphID, st.GraphID)
	assert.True(t, st.Finished)
	assert.Nil(t, st.CurrentNode)
	assert.Len(t, st.Log, 1)
}

func TestRunStateWireFormat(t *testing.T) {
	env := testServer(t)

	gid := env.Engine.CreateGraph("doubler",
		map[api.NodeKey]api.ToolName{"A": "double"}, nil, "A",
	)
	rid, err := env.Engine.CreateRun(gid, api.State{"x": 1})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/graph/state/"+string(rid), nil)
	require.Equal(t, http.StatusOK, w.Code)

	raw := decode[map[string]any](t, w)
	assert.Equal(t, "A", raw["current_node"])
	assert.Equal(t, false, raw["finished"])
	assert.Equal(t, []any{}, raw["log"])
	assert.Contains(t, raw, "state")
	assert.Contains(t, raw, "graph_id")
}

func TestGetAndListGraphs(t *testing.T) {
	env := testServer(t)

	gid := env.Engine.CreateGraph("doubler",
		map[api.NodeKey]api.ToolName{"A": "double"}, nil, "A",
	)

	w := env.do(t, http.MethodGet, "/graph/"+string(gid), nil)
	require.Equal(t, http.StatusOK, w.Code)
	g := decode[api.Graph](t, w)
	assert.Equal(t, gid, g.ID)
	assert.Equal(t, "doubler", g.Name)

	w = env.do(t, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[api.GraphsListResponse](t, w)
	assert.Equal(t, 2, list.Count)

	w = env.do(t, http.MethodGet, "/graph/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotFoundResponses(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID: "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	res := decode[api.ErrorResponse](t, w)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Contains(t, res.Error, "graph not found")
	assert.Empty(t, res.RunID)

	w = env.do(t, http.MethodGet, "/graph/state/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/graph/continue/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, decode[api.ErrorResponse](t, w).RunID)
}

func TestToolNotFoundResponse(t *testing.T) {
	env := testServer(t)

	gid := env.Engine.CreateGraph("broken",
		map[api.NodeKey]api.ToolName{"A": "unknown"}, nil, "A",
	)

	w := env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID: gid,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	res := decode[api.ErrorResponse](t, w)
	assert.Contains(t, res.Error, "unknown")
}

func TestToolFailureResponse(t *testing.T) {
	env := testServer(t)

	gid := env.Engine.CreateGraph("failing",
		map[api.NodeKey]api.ToolName{"A": "fail"}, nil, "A",
	)

	w := env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID: gid,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decode[api.ErrorResponse](t, w)
	assert.Contains(t, res.Error, "boom")
	require.NotEmpty(t, res.RunID)

	w = env.do(t, http.MethodGet, "/graph/state/"+string(res.RunID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[api.RunStateResponse](t, w)
	require.NotNil(t, st.CurrentNode)
	assert.Equal(t, api.NodeKey("A"), *st.CurrentNode)
	assert.Empty(t, st.Log)
}

func TestInvalidJSON(t *testing.T) {
	env := testServer(t)

	for _, path := range []string{
		"/graph/create", "/graph/run", "/tools", "/aurora/run",
	} {
		w := env.do(t, http.MethodPost, path, "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestContinueRun(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/graph/create", api.CreateGraphRequest{
		Name:      "late",
		Nodes:     map[api.NodeKey]api.ToolName{"A": "double", "B": "late"},
		Edges:     map[api.NodeKey]api.NodeKey{"A": "B"},
		StartNode: "A",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[api.CreateGraphResponse](t, w)

	w = env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID:      created.GraphID,
		InitialState: api.State{"x": 2},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	failed := decode[api.ErrorResponse](t, w)
	assert.Contains(t, failed.Error, "tool not found")
	require.NotEmpty(t, failed.RunID)
	rid := string(failed.RunID)

	w = env.do(t, http.MethodGet, "/graph/state/"+rid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[api.RunStateResponse](t, w)
	assert.False(t, st.Finished)
	require.NotNil(t, st.CurrentNode)
	assert.Equal(t, api.NodeKey("B"), *st.CurrentNode)
	assert.Len(t, st.Log, 1)

	w = env.do(t, http.MethodPost, "/graph/continue/"+rid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, failed.RunID, decode[api.ErrorResponse](t, w).RunID)

	w = env.do(t, http.MethodPost, "/tools", api.ToolDefinition{
		Name:   "late",
		Type:   api.ToolTypeLua,
		Script: "state.done = true\nreturn state",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/graph/continue/"+rid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[api.RunGraphResponse](t, w)
	assert.Equal(t, failed.RunID, res.RunID)
	assert.Equal(t, true, res.FinalState["done"])
	assert.Equal(t, float64(4), res.FinalState["x"])
	require.Len(t, res.Log, 2)
	assert.Equal(t, 1, res.Log[1].Step)
}

func TestTools(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/tools", api.ToolDefinition{
		Name: "bad", Type: "unknown",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/tools", api.ToolDefinition{
		Name:   "city",
		Type:   api.ToolTypeExtract,
		Path:   "profile.city",
		Target: "city",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decode[api.ToolRegisteredResponse](t, w)
	assert.Equal(t, api.ToolName("city"), reg.Name)

	w = env.do(t, http.MethodGet, "/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[api.ToolsListResponse](t, w)
	assert.Contains(t, list.Tools, api.ToolName("city"))
	assert.Contains(t, list.Tools, aurora.ShardSplitter)
	assert.Equal(t, len(list.Tools), list.Count)
}

func TestAuroraRun(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/aurora/run", api.State{
		"input_text": "Small input. Easily summarized.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[api.RunGraphResponse](t, w)
	assert.Equal(t, "Small input. Easily summarized.",
		res.FinalState["final_summary"])
	assert.Equal(t, true, res.FinalState["stop"])
	assert.Equal(t, float64(aurora.DefaultChunkSize),
		res.FinalState["chunk_size"])
	assert.Len(t, res.Log, 5)
}

func TestAuroraDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := engine.New(store.New(), tools.NewRegistry())
	router := server.NewServer(eng).SetupRoutes()

	req := httptest.NewRequest(
		http.MethodPost, "/aurora/run", bytes.NewReader([]byte("{}")),
	)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestArchivedRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	arc, err := archive.NewBlobArchiver(ctx, "mem://", "runs/")
	require.NoError(t, err)
	defer func() { _ = arc.Close() }()

	reg := tools.NewRegistry()
	reg.Register("double", tools.Func(func(st api.State) (api.State, error) {
		return st.Set("x", st.GetInt("x", 0)*2), nil
	}))
	eng := engine.New(store.New(), reg, arc)
	env := &testServerEnv{
		Engine: eng,
		Router: server.NewServer(eng).WithArchive(arc).SetupRoutes(),
	}

	gid := eng.CreateGraph("doubler",
		map[api.NodeKey]api.ToolName{"A": "double"}, nil, "A",
	)
	w := env.do(t, http.MethodPost, "/graph/run", api.RunGraphRequest{
		GraphID: gid, InitialState: api.State{"x": 5},
	})
	require.Equal(t, http.StatusOK, w.Code)
	ran := decode[api.RunGraphResponse](t, w)

	w = env.do(t, http.MethodGet,
		"/archive/"+string(gid)+"/"+string(ran.RunID), nil,
	)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[api.RunStateResponse](t, w)
	assert.Equal(t, ran.RunID, res.RunID)
	assert.Equal(t, gid, res.GraphID)
	assert.True(t, res.Finished)
	assert.Equal(t, float64(10), res.State["x"])
	assert.Len(t, res.Log, 1)

	w = env.do(t, http.MethodGet, "/archive/"+string(gid)+"/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArchiveDisabled(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/archive/graph/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	res := decode[api.ErrorResponse](t, w)
	assert.Contains(t, res.Error, "archive not configured")
}
