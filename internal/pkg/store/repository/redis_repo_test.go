package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreAdapter_SetGetDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisStoreAdapter(db)
	ctx := context.Background()

	mock.ExpectSet("k", "v", time.Minute).SetVal("OK")
	mock.ExpectGet("k").SetVal("v")
	mock.ExpectDel("k").SetVal(1)

	require.NoError(t, adapter.Set(ctx, "k", "v", time.Minute))
	val, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
	require.NoError(t, adapter.Delete(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreAdapter_GetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisStoreAdapter(db)

	mock.ExpectGet("missing").RedisNil()

	_, err := adapter.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, redis.Nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreAdapter_SetNX(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		want    bool
		wantErr bool
	}{
		{
			name:  "first writer wins",
			setup: func(mock redismock.ClientMock) { mock.ExpectSetNX("once", "1", time.Hour).SetVal(true) },
			want:  true,
		},
		{
			name:  "key already present",
			setup: func(mock redismock.ClientMock) { mock.ExpectSetNX("once", "1", time.Hour).SetVal(false) },
			want:  false,
		},
		{
			name:    "redis error",
			setup:   func(mock redismock.ClientMock) { mock.ExpectSetNX("once", "1", time.Hour).SetErr(errors.New("down")) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tt.setup(mock)
			adapter := NewRedisStoreAdapter(db)

			ok, err := adapter.SetNX(context.Background(), "once", "1", time.Hour)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

type cached struct {
	TrackingNumber string `json:"trackingNumber"`
	LoanAmount     int64  `json:"loanAmount"`
}

func TestJSONHelpers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisStoreAdapter(db)
	ctx := context.Background()

	value := cached{TrackingNumber: "TRK-1", LoanAmount: 3000}
	data, _ := json.Marshal(value)

	mock.ExpectSet("app", data, 30*time.Minute).SetVal("OK")
	mock.ExpectGet("app").SetVal(string(data))
	mock.ExpectGet("broken").SetVal("{not json")

	require.NoError(t, SetJSON(ctx, adapter, "app", value, 30*time.Minute))

	got, err := GetJSON[cached](ctx, adapter, "app")
	require.NoError(t, err)
	assert.Equal(t, value, *got)

	_, err = GetJSON[cached](ctx, adapter, "broken")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
