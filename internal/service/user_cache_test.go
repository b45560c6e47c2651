package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	mu       sync.Mutex
	acks     int
	nacks    int
	requeued int
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *ackRecorder) counts() (int, int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks, a.requeued
}

// Not parallel: the auth provider address lives in the global viper config.
func TestCreateOrGet(t *testing.T) {
	env := setupTest(t)
	svc := newUserCacheService(env.logger, env.repo, env.mq)
	ctx := t.Context()

	userID := uuid.New()
	var calls atomic.Int32
	authAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/users/@me" || r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"details": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(model.CachedUser{ID: userID, Username: "gopher", DisplayName: "Go Pher"})
	}))
	t.Cleanup(authAPI.Close)

	viper.Set("auth.api", authAPI.URL)
	t.Cleanup(func() { viper.Set("auth.api", "") })

	_, err := svc.CreateOrGet(ctx, userID, "bad-token")
	assert.ErrorIs(t, err, ErrFailedToFetchUser)

	user, err := svc.CreateOrGet(ctx, userID, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "Go Pher", user.Name())

	user, err = svc.CreateOrGet(ctx, userID, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "gopher", user.Username)
	assert.Equal(t, int32(2), calls.Load())

	t.Run("token of someone else", func(t *testing.T) {
		_, err := svc.CreateOrGet(ctx, uuid.New(), "good-token")
		assert.ErrorIs(t, err, ErrFailedToFetchUser)
	})
}

func TestFindCachedUser(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newUserCacheService(env.logger, env.repo, env.mq)
	ctx := t.Context()

	_, err := svc.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	user := env.addUser("gopher")
	found, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, *found)
	assert.True(t, env.mr.Exists(redisrepo.UserCacheKey(user.ID.String())))
}

func TestConsumeUserUpdates(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newUserCacheService(env.logger, env.repo, env.mq)
	ctx := t.Context()

	user := env.addUser("gopher")
	_, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	env.mr.Set(redisrepo.CommentsKey("course", uuid.NewString(), 10, 0), "[]")

	recorder := &ackRecorder{}
	go svc.ConsumeUserUpdates(ctx)

	deliver := func(body string) {
		env.mq.deliveries <- amqp.Delivery{Acknowledger: recorder, Body: []byte(body)}
	}

	deliver(`{"user_id":"` + user.ID.String() + `","display_name":"Renamed"}`)
	assert.Eventually(t, func() bool {
		acks, _, _ := recorder.counts()
		return acks == 1
	}, time.Second, 10*time.Millisecond)

	assert.Empty(t, env.mr.Keys())
	found, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.DisplayName)

	deliver(`not json`)
	deliver(`{"display_name":"no id"}`)
	deliver(`{"user_id":"nope"}`)
	deliver(`{"user_id":"` + user.ID.String() + `","password":"secret"}`)
	assert.Eventually(t, func() bool {
		_, nacks, requeued := recorder.counts()
		return nacks == 4 && requeued == 0
	}, time.Second, 10*time.Millisecond)
}
