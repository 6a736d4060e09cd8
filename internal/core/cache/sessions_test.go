package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
)

type fakeClient struct {
	refreshErr error
}

func (f *fakeClient) RefreshIfNeeded(ctx context.Context) error {
	return f.refreshErr
}

func credsFor(user string) *kreta.Credentials {
	return &kreta.Credentials{Username: user, Password: "p", Institute: "klik1"}
}

func TestWithClientLogsInOnce(t *testing.T) {
	logins := 0
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		logins++
		return &fakeClient{}, nil
	})

	for i := 0; i < 3; i++ {
		err := sc.WithClient(context.Background(), credsFor("anna"), func(c *fakeClient) error {
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, logins)
	assert.Equal(t, 1, sc.Len())
}

func TestWithClientSeparateAccounts(t *testing.T) {
	logins := 0
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		logins++
		return &fakeClient{}, nil
	})

	require.NoError(t, sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error { return nil }))
	require.NoError(t, sc.WithClient(context.Background(), credsFor("bela"), func(*fakeClient) error { return nil }))

	assert.Equal(t, 2, logins)
	assert.Equal(t, 2, sc.Len())
}

func TestWithClientReloginAfterFailure(t *testing.T) {
	logins := 0
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		logins++
		return &fakeClient{}, nil
	})

	fetchErr := errors.New("portal returned 401")
	err := sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error {
		return fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)

	// the failed session is gone, the next call logs in fresh
	require.NoError(t, sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error { return nil }))
	assert.Equal(t, 2, logins)
}

func TestWithClientReloginWhenRefreshFails(t *testing.T) {
	logins := 0
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		logins++
		if logins == 1 {
			return &fakeClient{refreshErr: errors.New("refresh token revoked")}, nil
		}
		return &fakeClient{}, nil
	})

	require.NoError(t, sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error { return nil }))
	require.NoError(t, sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error { return nil }))

	assert.Equal(t, 2, logins)
}

func TestWithClientPropagatesLoginError(t *testing.T) {
	loginErr := errors.New("wrong password")
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		return nil, loginErr
	})

	err := sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error {
		t.Fatal("fn must not run without a session")
		return nil
	})
	assert.ErrorIs(t, err, loginErr)
}

func TestWithClientSerializesSameAccount(t *testing.T) {
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		return &fakeClient{}, nil
	})

	inFlight := 0
	maxInFlight := 0
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	assert.Equal(t, 1, sc.Len())
}

func TestPrune(t *testing.T) {
	sc := NewSessionCache(func(ctx context.Context, creds *kreta.Credentials) (*fakeClient, error) {
		return &fakeClient{}, nil
	})

	require.NoError(t, sc.WithClient(context.Background(), credsFor("anna"), func(*fakeClient) error { return nil }))
	require.NoError(t, sc.WithClient(context.Background(), credsFor("bela"), func(*fakeClient) error { return nil }))

	assert.Equal(t, 0, sc.Prune(time.Hour))
	assert.Equal(t, 2, sc.Len())

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, 2, sc.Prune(time.Second))
	assert.Equal(t, 0, sc.Len())
}
