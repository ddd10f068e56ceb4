package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/testutil"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

func TestPushSubscribeLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewPushService(e.subs, config.PushConfig{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv", Subscriber: "mailto:a@b.c"})
	assert.Equal(t, "pub", svc.PublicKey())

	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	err := svc.Subscribe(ctx, alice.ID, "", "k", "a")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.Subscribe(ctx, alice.ID, "https://push.example/1", "k1", "a1"))
	ok, err := svc.Subscribed(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// the same browser endpoint moves to whoever subscribed last
	require.NoError(t, svc.Subscribe(ctx, bob.ID, "https://push.example/1", "k2", "a2"))
	var rows []model.PushSubscription
	require.NoError(t, e.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].UserID)
	assert.Equal(t, "k2", rows[0].P256dh)

	// another user's endpoint is left alone
	require.NoError(t, svc.Unsubscribe(ctx, alice.ID, "https://push.example/1"))
	ok, err = svc.Subscribed(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Unsubscribe(ctx, bob.ID, "https://push.example/1"))
	ok, err = svc.Subscribed(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPushPublicKeyEmptyWhenDisabled(t *testing.T) {
	e := newEnv(t)
	svc := NewPushService(e.subs, config.PushConfig{VAPIDPublicKey: "pub"})
	assert.Equal(t, "", svc.PublicKey())
}
