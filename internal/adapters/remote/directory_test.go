package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"library-borrowing/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(catalog, member, user string) *Directory {
	return NewDirectory(catalog, member, user, RetryPolicy{Attempts: 1, Timeout: 2 * time.Second})
}

func TestGetBookSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		fmt.Fprint(w, `{"id":42,"title":"The Hobbit","author":"Tolkien"}`)
	}))
	defer srv.Close()

	d := newTestDirectory(srv.URL+"/books", "", "")

	book, err := d.GetBook(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), book.ID)
	assert.Equal(t, "The Hobbit", book.Title)
}

func TestGetBookNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := newTestDirectory(srv.URL+"/books", "", "")

	_, err := d.GetBook(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.NotErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestGetBookServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDirectory(srv.URL+"/books", "", "")

	_, err := d.GetBook(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestGetBookTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	d := newTestDirectory(srv.URL+"/books", "", "")

	_, err := d.GetBook(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestGetBookMalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": not-json`)
	}))
	defer srv.Close()

	d := newTestDirectory(srv.URL+"/books", "", "")

	_, err := d.GetBook(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":1,"title":"Dune"}`)
	}))
	defer srv.Close()

	d := NewDirectory(srv.URL+"/books", "", "", RetryPolicy{
		Attempts: 2,
		Backoff:  time.Millisecond,
		Timeout:  2 * time.Second,
	})

	book, err := d.GetBook(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotFoundIsNeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDirectory(srv.URL+"/books", "", "", RetryPolicy{
		Attempts: 3,
		Backoff:  time.Millisecond,
		Timeout:  2 * time.Second,
	})

	_, err := d.GetBook(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Equal(t, int32(1), calls.Load(), "a 404 is authoritative")
}

func TestGetMemberNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := newTestDirectory("", srv.URL+"/members", "")

	_, err := d.GetMember(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestResolveMemberForUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":3,"name":"Ann","memberProfile":{"id":31,"name":"Ann"}}`)
	}))
	defer srv.Close()

	d := newTestDirectory("", "", srv.URL+"/users")

	memberID, err := d.ResolveMemberForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(31), memberID)
}

func TestResolveMemberForUserWithoutProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":3,"name":"Ann","memberProfile":null}`)
	}))
	defer srv.Close()

	d := newTestDirectory("", "", srv.URL+"/users")

	_, err := d.ResolveMemberForUser(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrProfileNotLinked)
}

func TestResolveMemberForUserMissingUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := newTestDirectory("", "", srv.URL+"/users")

	_, err := d.ResolveMemberForUser(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrProfileNotLinked)
}

func TestPolicyNormalization(t *testing.T) {
	p := RetryPolicy{Attempts: 0, Timeout: 0}.normalized()
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, 10*time.Second, p.Timeout)
}
