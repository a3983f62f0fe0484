package drivers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	drivers map[string]Driver
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{drivers: map[string]Driver{}}
}

func (f *fakeRepo) List(_ context.Context) ([]Driver, error) {
	var out []Driver
	for _, d := range f.drivers {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (f *fakeRepo) Create(_ context.Context, d Driver) error {
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeRepo) Update(_ context.Context, id, name string, phone *string) (*Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Name = name
	d.Phone = phone
	f.drivers[id] = d
	return &d, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(f.drivers, id)
	return nil
}

func testServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	handler := NewHandler(slog.Default(), NewService(repo))
	r := chi.NewRouter()
	r.Route("/drivers", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestCreateDriverEndpoint(t *testing.T) {
	srv, repo := testServer(t)

	resp, err := http.Post(srv.URL+"/drivers", "application/json",
		bytes.NewBufferString(`{"name":"Adam Nowak","phone":"+48 600 100 200"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Driver
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Adam Nowak", created.Name)
	require.Len(t, repo.drivers, 1)
}

func TestCreateDriverMissingName(t *testing.T) {
	srv, repo := testServer(t)

	resp, err := http.Post(srv.URL+"/drivers", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, repo.drivers)
}

func TestShowDriverNotFound(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/drivers/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	require.EqualValues(t, http.StatusNotFound, problem["status"])
}

func TestUpdateDriver(t *testing.T) {
	srv, repo := testServer(t)
	repo.drivers["drv-1"] = Driver{ID: "drv-1", Name: "Adam"}

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/drivers/drv-1",
		bytes.NewBufferString(`{"name":"Adam Nowak"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Adam Nowak", repo.drivers["drv-1"].Name)
}

func TestDeleteDriver(t *testing.T) {
	srv, repo := testServer(t)
	repo.drivers["drv-1"] = Driver{ID: "drv-1", Name: "Adam"}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/drivers/drv-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, repo.drivers)
}
