package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/testutil"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

func TestCreateItemDuplicateIsCaseInsensitivePerScope(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u")
	r1 := testutil.CreateRoom(t, e.db, u, "r1")
	r2 := testutil.CreateRoom(t, e.db, u, "r2")

	foo, err := e.itemSvc.Create(ctx, u.ID, "  Foo ", &r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Foo", foo.Name)

	_, err = e.itemSvc.Create(ctx, u.ID, "foo", &r1.ID)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	existing, ok := ae.Data.(*model.Item)
	require.True(t, ok)
	assert.Equal(t, foo.ID, existing.ID)

	_, err = e.itemSvc.Create(ctx, u.ID, "foo", &r2.ID)
	require.NoError(t, err)
	global, err := e.itemSvc.Create(ctx, u.ID, "foo", nil)
	require.NoError(t, err)
	assert.Nil(t, global.RoomID)
}

func TestCreateItemValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u")

	_, err := e.itemSvc.Create(ctx, u.ID, "   ", nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = e.itemSvc.Create(ctx, u.ID, strings.Repeat("x", 65), nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = e.itemSvc.Create(ctx, u.ID, strings.Repeat("é", 64), nil)
	assert.NoError(t, err)
	_, err = e.itemSvc.Create(ctx, u.ID, "x", strPtr("missing-room"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateItemTriggersNotifier(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u")

	_, err := e.itemSvc.Create(ctx, u.ID, "one", nil)
	require.NoError(t, err)
	// the worker is not started, so the trigger stays queued
	assert.Len(t, e.notifier.ch, 1)

	_, err = e.itemSvc.Create(ctx, u.ID, "two", nil)
	require.NoError(t, err)
	assert.Len(t, e.notifier.ch, 1)
}

func TestDeleteItemOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	other := testutil.CreateUser(t, e.db, "other")
	it := testutil.CreateItem(t, e.db, owner, "thing", nil)
	testutil.CreateVote(t, e.db, other, it, model.TierS)

	err := e.itemSvc.Delete(ctx, other.ID, it.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	require.NoError(t, e.itemSvc.Delete(ctx, owner.ID, it.ID))
	err = e.itemSvc.Delete(ctx, owner.ID, it.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	n, err := e.votes.CountByKey(ctx, other.ID, it.ID, model.GlobalScope)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRecommendationsOwnFirstThenOthers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, e.db, "me")
	other := testutil.CreateUser(t, e.db, "other")

	mineOld := testutil.CreateItem(t, e.db, me, "mine-old", nil)
	mineNew := testutil.CreateItem(t, e.db, me, "mine-new", nil)
	testutil.Backdate(t, e.db, mineOld, time.Hour)
	for i := 0; i < 25; i++ {
		testutil.CreateItem(t, e.db, other, "theirs-"+string(rune('a'+i)), nil)
	}
	votedByMe := testutil.CreateItem(t, e.db, other, "voted", nil)
	testutil.CreateVote(t, e.db, me, votedByMe, model.TierIgnored)

	recs, err := e.itemSvc.Recommendations(ctx, me.ID, nil)
	require.NoError(t, err)
	require.Len(t, recs, RecommendationsLimit)
	assert.Equal(t, mineNew.ID, recs[0].ID)
	assert.Equal(t, mineOld.ID, recs[1].ID)
	for _, r := range recs[2:] {
		assert.Equal(t, other.ID, r.UserID)
		assert.NotEqual(t, votedByMe.ID, r.ID)
	}
}

func TestListMineAllEscapesRoomScope(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u")
	room := testutil.CreateRoom(t, e.db, u, "room")
	testutil.CreateItem(t, e.db, u, "in-room", room)
	testutil.CreateItem(t, e.db, u, "global", nil)

	scoped, err := e.itemSvc.ListMine(ctx, u.ID, &room.ID, false)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "in-room", scoped[0].Name)

	all, err := e.itemSvc.ListMine(ctx, u.ID, &room.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unvoted, err := e.itemSvc.ListMyUnvoted(ctx, u.ID, nil)
	require.NoError(t, err)
	require.Len(t, unvoted, 1)
	assert.Equal(t, "global", unvoted[0].Name)
}

func TestSearchFallsBackToRecent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, e.db, "u")
	for i := 0; i < 25; i++ {
		testutil.CreateItem(t, e.db, u, "item-"+string(rune('a'+i)), nil)
	}
	res, err := e.itemSvc.Search(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, res, SearchLimit)

	res, err = e.itemSvc.Search(ctx, "ITEM-C", nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "item-c", res[0].Name)
}
