package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
)

type fakePortal struct {
	lessons  []model.Lesson
	homework []model.Homework
	exams    []model.Exam
	absences []model.Absence
	err      error
}

func (f *fakePortal) RefreshIfNeeded(ctx context.Context) error { return nil }

func (f *fakePortal) Lessons(ctx context.Context, from, to time.Time) ([]model.Lesson, error) {
	return f.lessons, f.err
}
func (f *fakePortal) Homework(ctx context.Context, from, to time.Time) ([]model.Homework, error) {
	return f.homework, f.err
}
func (f *fakePortal) Exams(ctx context.Context, from, to time.Time) ([]model.Exam, error) {
	return f.exams, f.err
}
func (f *fakePortal) Absences(ctx context.Context, from, to time.Time) ([]model.Absence, error) {
	return f.absences, f.err
}
func (f *fakePortal) AbsencesSinceAnchor(ctx context.Context, anchor, now time.Time) ([]model.Absence, error) {
	return f.absences, f.err
}

func testServer(t *testing.T, portal *fakePortal) *Server {
	return testServerWithStore(t, portal, nil)
}

func testServerWithStore(t *testing.T, portal *fakePortal, store *credstore.FileStore) *Server {
	t.Helper()
	sealer, err := credstore.NewSealer(make([]byte, chacha20poly1305.KeySize))
	require.NoError(t, err)

	return newServer(sealer, store, func(ctx context.Context, creds *kreta.Credentials) (portalClient, error) {
		if creds.Password == "rossz" {
			return nil, errors.New("invalid credentials")
		}
		return portal, nil
	})
}

func testBlob() string {
	return base64.URLEncoding.EncodeToString([]byte("anna\njelszo\nklik1"))
}

func samplePortal() *fakePortal {
	excuseType := &model.UidNameDesc{Uid: "e1", Name: "Orvosi igazolás"}
	return &fakePortal{
		lessons: []model.Lesson{{
			Uid:       "l1",
			Name:      "matematika",
			Date:      "2025-09-15T00:00:00Z",
			StartTime: "2025-09-15T08:00:00Z",
			EndTime:   "2025-09-15T08:45:00Z",
			RoomName:  "208",
			Subject:   &model.Subject{Uid: "matek", Name: "matematika"},
		}},
		homework: []model.Homework{{
			Uid:          "hw1",
			SubjectName:  "kémia",
			Subject:      model.Subject{Uid: "kemia", Name: "kémia"},
			Text:         "jegyzet",
			Deadline:     "2025-09-20T00:00:00Z",
			DateAssigned: "2025-09-15T10:00:00Z",
		}},
		absences: []model.Absence{{
			Uid:          "a1",
			Date:         "2025-09-15T00:00:00Z",
			ExcuseStatus: "Igazolt",
			ExcuseType:   excuseType,
			Subject:      model.Subject{Uid: "matek", Name: "matematika"},
			Lesson:       model.AbsenceLesson{StartTime: "2025-09-15T08:00:00Z"},
		}},
	}
}

func doRequest(t *testing.T, s *Server, method, target, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestLanding(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "kreta bridge")
}

func TestTimetableCalendar(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+testBlob()+"/timetable.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:matematika")
}

func TestTimetableCalendarBadBlob(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/base64/!!!/timetable.ics", "")
	// errors still ship as a well-formed calendar with status 200
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:timetable error")
}

func TestTimetableCalendarLoginFailure(t *testing.T) {
	s := testServer(t, samplePortal())
	blob := base64.URLEncoding.EncodeToString([]byte("anna\nrossz\nklik1"))

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+blob+"/timetable.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:timetable error")
	assert.Contains(t, body, "invalid credentials")
}

func TestCombinedCalendar(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+testBlob()+"/combine.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:matematika (hiányzás)")
	// the kémia homework matches no lesson, so it shows up standalone
	assert.Contains(t, body, "SUMMARY:HF: kémia")
}

func TestCombinedCalendarFetchError(t *testing.T) {
	portal := samplePortal()
	portal.err = errors.New("portal is down")
	s := testServer(t, portal)

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+testBlob()+"/combine.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:timetable error")
}

func TestCalendarOptions(t *testing.T) {
	s := testServer(t, samplePortal())
	opts := base64.URLEncoding.EncodeToString([]byte(`{"mark_absences":false}`))

	resp, body := doRequest(t, s, http.MethodGet,
		"/base64/"+testBlob()+"/combine.ics?opts="+opts, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:matematika\r\n")
	assert.NotContains(t, body, "hiányzás")
}

func TestAbsencesPage(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+testBlob()+"/absences.html", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Orvosi igazolás")
	assert.Contains(t, body, "Nincs igazolatlan mulasztásod.")
}

func TestAbsencesPageError(t *testing.T) {
	portal := samplePortal()
	portal.err = errors.New("portal is down")
	s := testServer(t, portal)

	resp, body := doRequest(t, s, http.MethodGet, "/base64/"+testBlob()+"/absences.html", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "portal is down")
}

func TestSealRoundTrip(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, token := doRequest(t, s, http.MethodPost, "/seal", "anna\njelszo\nklik1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, token, "jelszo")

	resp, body := doRequest(t, s, http.MethodGet, "/k/"+token+"/timetable.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:matematika")
}

func TestSealRejectsBadBody(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, _ := doRequest(t, s, http.MethodPost, "/seal", "just-one-line")
	assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)

	resp, _ = doRequest(t, s, http.MethodPost, "/seal", "anna\n\nklik1")
	assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
}

func writeCredentialsFile(t *testing.T, path, username string) {
	t.Helper()
	content := `{"username":"` + username + `","password":"jelszo","institute":"klik1"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestDefaultAccountRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	writeCredentialsFile(t, path, "anna")

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	s := testServerWithStore(t, samplePortal(), store)

	resp, body := doRequest(t, s, http.MethodGet, "/my/timetable.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "SUMMARY:matematika")

	resp, body = doRequest(t, s, http.MethodGet, "/my/combine.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:HF: kémia")

	resp, body = doRequest(t, s, http.MethodGet, "/my/absences.html", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Orvosi igazolás")
}

func TestDefaultAccountReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	writeCredentialsFile(t, path, "anna")

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	var mu sync.Mutex
	var seen []string
	sealer, err := credstore.NewSealer(make([]byte, chacha20poly1305.KeySize))
	require.NoError(t, err)
	portal := samplePortal()
	s := newServer(sealer, store, func(ctx context.Context, creds *kreta.Credentials) (portalClient, error) {
		mu.Lock()
		seen = append(seen, creds.Username)
		mu.Unlock()
		return portal, nil
	})

	resp, _ := doRequest(t, s, http.MethodGet, "/my/timetable.ics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// a changed file must reach the feed without a restart
	writeCredentialsFile(t, path, "borka")
	assert.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/my/timetable.ics", nil)
		resp, err := s.app.Test(req, 5000)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "borka"
	}, 3*time.Second, 50*time.Millisecond)
}

func TestDefaultAccountDisabled(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, _ := doRequest(t, s, http.MethodGet, "/my/timetable.ics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForeignTokenRejected(t *testing.T) {
	s := testServer(t, samplePortal())

	resp, body := doRequest(t, s, http.MethodGet, "/k/not-a-real-token/timetable.ics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "SUMMARY:timetable error")
}
