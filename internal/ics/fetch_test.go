package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOneCachesAndRevalidates(t *testing.T) {
	body := string(icsBody())
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	feed := Feed{ID: "t", URL: ts.URL}

	res, err := f.FetchOne(context.Background(), feed)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, body, string(res.Body))

	// Second fetch revalidates and serves the cached body on 304.
	res, err = f.FetchOne(context.Background(), feed)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, body, string(res.Body))
	assert.Equal(t, 2, hits)
}

func TestFetchOneStaleFallbackOnServerError(t *testing.T) {
	fail := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	feed := Feed{ID: "t", URL: ts.URL}

	_, err := f.FetchOne(context.Background(), feed)
	require.NoError(t, err)

	fail = true
	res, err := f.FetchOne(context.Background(), feed)
	require.NoError(t, err, "cached body serves through server errors")
	assert.True(t, res.FromCache)
}

func TestFetchOneErrorWithoutCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	_, err := f.FetchOne(context.Background(), Feed{ID: "t", URL: ts.URL})
	assert.Error(t, err)
}

func TestFetchAllCollectsPerFeedErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	results, errs := f.FetchAll(context.Background(), []Feed{
		{ID: "ok", URL: ts.URL},
		{ID: "bad", URL: ""},
	})
	assert.Len(t, results, 1)
	assert.Len(t, errs, 1)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/...(redacted)",
		redactURL("https://example.com/private/feed.ics?token=s3cret"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
