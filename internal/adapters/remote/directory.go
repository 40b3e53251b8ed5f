package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"library-borrowing/internal/core/domain"

	"github.com/google/uuid"
)

// RetryPolicy controls how directory calls behave against slow or flaky
// stores: per-attempt timeout, number of attempts, and backoff between
// attempts. NotFound responses are authoritative and never retried.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// DefaultRetryPolicy is a single attempt with a 10 second timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 1,
		Backoff:  0,
		Timeout:  10 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	return p
}

// errNotFound marks a 404 from a remote store before it is mapped to the
// entity-specific domain error.
var errNotFound = errors.New("remote entity not found")

// Directory resolves books, members and users from the catalog and member
// services. Each call is a synchronous round trip; responses are classified
// into NotFound-class domain errors (hard validation failures) or
// domain.ErrRemoteUnavailable (transport failure, unexpected status,
// malformed body).
type Directory struct {
	catalogURL string
	memberURL  string
	userURL    string
	client     *http.Client
	policy     RetryPolicy
}

// NewDirectory creates a directory client for the given base URLs.
// catalogURL serves books, memberURL serves member profiles and userURL
// serves authenticated users with their linked member profile.
func NewDirectory(catalogURL, memberURL, userURL string, policy RetryPolicy) *Directory {
	policy = policy.normalized()
	return &Directory{
		catalogURL: catalogURL,
		memberURL:  memberURL,
		userURL:    userURL,
		client:     &http.Client{Timeout: policy.Timeout},
		policy:     policy,
	}
}

// GetBook fetches a book snapshot from the catalog service
func (d *Directory) GetBook(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	err := d.getJSON(ctx, fmt.Sprintf("%s/%d", d.catalogURL, id), &book)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrBookNotFound, id)
		}
		return nil, err
	}
	return &book, nil
}

// GetMember fetches a member snapshot from the member service
func (d *Directory) GetMember(ctx context.Context, id uint) (*domain.Member, error) {
	var member domain.Member
	err := d.getJSON(ctx, fmt.Sprintf("%s/%d", d.memberURL, id), &member)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrMemberNotFound, id)
		}
		return nil, err
	}
	return &member, nil
}

// GetUser fetches an authenticated user together with its linked member
// profile from the member service
func (d *Directory) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := d.getJSON(ctx, fmt.Sprintf("%s/%d", d.userURL, id), &user)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: user %d", domain.ErrProfileNotLinked, id)
		}
		return nil, err
	}
	return &user, nil
}

// ResolveMemberForUser resolves an authenticated principal to its member
// profile id. Fails with domain.ErrProfileNotLinked when the user exists
// but has no linked profile.
func (d *Directory) ResolveMemberForUser(ctx context.Context, userID uint) (uint, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.MemberProfile == nil || user.MemberProfile.ID == 0 {
		return 0, fmt.Errorf("%w: user %d", domain.ErrProfileNotLinked, userID)
	}
	return user.MemberProfile.ID, nil
}

// getJSON performs the GET round trips for one lookup under the retry
// policy. A 404 short-circuits: the store answered authoritatively.
func (d *Directory) getJSON(ctx context.Context, url string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < d.policy.Attempts; attempt++ {
		if attempt > 0 && d.policy.Backoff > 0 {
			select {
			case <-time.After(d.policy.Backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, ctx.Err())
			}
		}

		err := d.doOnce(ctx, url, out)
		if err == nil || errors.Is(err, errNotFound) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (d *Directory) doOnce(ctx context.Context, url string, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, d.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status %d: %s", domain.ErrRemoteUnavailable, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", domain.ErrRemoteUnavailable, err)
	}
	return nil
}
