package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []CallEvent
}

func (r *recordingObserver) OnCallComplete(e CallEvent) { r.events = append(r.events, e) }

func ptr(v int64) *int64 { return &v }

func TestClient_PlanSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/plans/3", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(contract.PlanPayload{
			PlanID: 3,
			Title:  "2026-2030",
			Areas:  []contract.AreaPayload{{ID: ptr(1), Name: "Research"}},
		})
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(Config{BaseURL: srv.URL + "/", Token: "secret"}, obs)
	p, err := c.PlanSnapshot(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "2026-2030", p.Title)
	require.Len(t, p.Areas, 1)
	assert.Equal(t, int64(1), *p.Areas[0].ID)
	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, http.StatusOK, obs.events[0].Status)
}

func TestClient_SubmitPlan_CreateAndUpdate(t *testing.T) {
	var methods, paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p contract.PlanPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.True(t, p.Areas[0].IsDeleted)
		_ = json.NewEncoder(w).Encode(contract.SaveResult{ID: 12})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	payload := contract.PlanPayload{Areas: []contract.AreaPayload{{ID: ptr(1), IsDeleted: true}}}

	res, err := c.SubmitPlan(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.ID)

	payload.PlanID = 12
	_, err = c.SubmitPlan(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPost, http.MethodPut}, methods)
	assert.Equal(t, []string{"/plans", "/plans/12"}, paths)
}

func TestClient_SubmitEvent_JSONWithoutAttachments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/events/4", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p contract.EventPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, []int64{9}, p.RemovedDateIDs)
		_ = json.NewEncoder(w).Encode(contract.SaveResult{ID: 4})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	res, err := c.SubmitEvent(context.Background(), contract.EventPayload{ID: ptr(4), RemovedDateIDs: []int64{9}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.ID)
}

func TestClient_SubmitEvent_MultipartWithAttachments(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "budget.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.7"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var p contract.EventPayload
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload")), &p))
		assert.Equal(t, "Fair", p.Name)

		files := r.MultipartForm.File["attachments"]
		require.Len(t, files, 1)
		assert.Equal(t, "budget.pdf", files[0].Filename)
		assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))
		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

		_ = json.NewEncoder(w).Encode(contract.SaveResult{ID: 31})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	res, err := c.SubmitEvent(context.Background(),
		contract.EventPayload{Name: "Fair", Attachments: []string{"budget.pdf"}},
		[]domain.Attachment{{Name: "budget.pdf", ContentType: "application/pdf", Path: file}})

	require.NoError(t, err)
	assert.Equal(t, int64(31), res.ID)
}

func TestClient_SubmitEvent_MissingAttachment(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.SubmitEvent(context.Background(), contract.EventPayload{},
		[]domain.Attachment{{Name: "gone.pdf", Path: filepath.Join(t.TempDir(), "gone.pdf")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.pdf")
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plan locked", http.StatusConflict)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(Config{BaseURL: srv.URL}, obs)
	_, err := c.SubmitPlan(context.Background(), contract.PlanPayload{PlanID: 1})

	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "plan locked")
	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
	assert.Equal(t, "STATUS", obs.events[0].ErrorCode)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 30 * time.Millisecond}, nil)
	_, err := c.EventSnapshot(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_CallerCancelIsNotATimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, obs)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.EventSnapshot(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	require.Len(t, obs.events, 1)
	assert.Equal(t, "CANCELED", obs.events[0].ErrorCode)
}

func TestClient_Unavailable(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.PlanSnapshot(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.ListPlans(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(&buf)
	obs.OnCallComplete(CallEvent{Method: "GET", Path: "/plans/1", Status: 200, Success: true})
	obs.OnCallComplete(CallEvent{Method: "PUT", Path: "/plans/1", Status: 500, ErrorCode: "STATUS"})

	out := buf.String()
	assert.Contains(t, out, "msg=api_call")
	assert.Contains(t, out, "path=/plans/1")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error_code=STATUS")
}
