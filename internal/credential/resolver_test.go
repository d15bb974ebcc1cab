package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHost struct {
	cred string
	ok   bool
}

func (s stubHost) ProbeCredential(context.Context) (string, bool) {
	return s.cred, s.ok
}

// Resolution must pick exactly the highest-priority available source:
// environment > host-runtime > stored.
func TestResolvePriority(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		env        string
		host       HostProbe
		stored     string
		wantState  State
		wantCred   string
		wantSource string
	}{
		{"all present picks environment", "env-key", stubHost{"host-key", true}, "stored-key", StateReady, "env-key", sourceEnvironment},
		{"env absent picks host", "", stubHost{"host-key", true}, "stored-key", StateReady, "host-key", sourceHost},
		{"env and host absent picks stored", "", stubHost{"", false}, "stored-key", StateReady, "stored-key", sourceStored},
		{"failed probe is source absent", "", stubHost{"", false}, "", StateAwaitingInput, "", ""},
		{"host returns blank is source absent", "", stubHost{"   ", true}, "stored-key", StateReady, "stored-key", sourceStored},
		{"nothing available awaits input", "", nil, "", StateAwaitingInput, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			if tc.stored != "" {
				store.Save(ctx, tc.stored)
			}
			r := NewResolver(tc.env, tc.host, store, testLogger())

			require.Equal(t, StateUnresolved, r.State())
			require.Equal(t, tc.wantState, r.Resolve(ctx))

			cred, ok := r.Credential()
			if tc.wantState == StateReady {
				require.True(t, ok)
				assert.Equal(t, tc.wantCred, cred)
				assert.Equal(t, tc.wantSource, r.Source())
			} else {
				require.False(t, ok)
			}
		})
	}
}

func TestResolveIsIdempotentOnceReady(t *testing.T) {
	ctx := context.Background()
	r := NewResolver("env-key", nil, nil, testLogger())

	require.Equal(t, StateReady, r.Resolve(ctx))
	require.Equal(t, StateReady, r.Resolve(ctx))
	cred, ok := r.Credential()
	require.True(t, ok)
	assert.Equal(t, "env-key", cred)
}

func TestSubmitManual(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	r := NewResolver("", nil, store, testLogger())
	require.Equal(t, StateAwaitingInput, r.Resolve(ctx))

	require.Error(t, r.SubmitManual(ctx, "   "), "blank token must be rejected")
	require.Equal(t, StateAwaitingInput, r.State())

	require.NoError(t, r.SubmitManual(ctx, "typed-key"))
	require.Equal(t, StateReady, r.State())
	cred, ok := r.Credential()
	require.True(t, ok)
	assert.Equal(t, "typed-key", cred)
	assert.Equal(t, sourceManual, r.Source())

	// the manual key is persisted for the next session
	saved, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "typed-key", saved)
}

func TestInvalidateRetainsStoredValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Save(ctx, "suspect-key")

	r := NewResolver("", nil, store, testLogger())
	require.Equal(t, StateReady, r.Resolve(ctx))

	r.Invalidate("the key was rejected")
	require.Equal(t, StateAwaitingInput, r.State())
	_, ok := r.Credential()
	require.False(t, ok)
	assert.Equal(t, "the key was rejected", r.Message())

	// stored value stays available for inspection / correction
	saved, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "suspect-key", saved)

	// re-entry behaves like initialization and clears the message
	require.Equal(t, StateReady, r.Resolve(ctx))
	assert.Empty(t, r.Message())
	cred, _ := r.Credential()
	assert.Equal(t, "suspect-key", cred)
}

func TestClearMessage(t *testing.T) {
	r := NewResolver("env-key", nil, nil, testLogger())
	r.Resolve(context.Background())
	r.Invalidate("stale message")
	r.ClearMessage()
	assert.Empty(t, r.Message())
}
