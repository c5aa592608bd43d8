package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func expectDispatchLookup(mock sqlmock.Sqlmock, dispatchID, unitID int64, service string, eta int) {
	mock.ExpectQuery(`SELECT \* FROM "dispatches" WHERE "dispatches"\."id" = \$1 ORDER BY "dispatches"\."id" LIMIT \$[0-9]+`).
		WithArgs(dispatchID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "service", "unit_id", "eta_minutes", "status", "dispatched_at"}).
			AddRow(dispatchID, service, unitID, eta, "active", time.Now()))
}

func TestWorkerPool_Notify(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Notify(Job{DispatchID: 123, Event: EventDispatched})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.DispatchID)
		assert.Equal(t, EventDispatched, job.Event)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be queued")
	}
}

func TestWorkerPool_SkipsWhenPushUnconfigured(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, nil)

	var sent bool
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sent = true
			return nil, fmt.Errorf("should not be called")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	// No sqlmock expectations: the job must be dropped before any
	// database lookup or send is attempted.
	wp.Notify(Job{DispatchID: 104, Event: EventDispatched})
	time.Sleep(100 * time.Millisecond)

	assert.False(t, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends alert for one matching subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)

				var msg struct {
					Title string `json:"title"`
					Body  string `json:"body"`
					Event string `json:"event"`
				}
				require.NoError(t, json.Unmarshal(payload, &msg))
				assert.Equal(t, "ambulance unit dispatched", msg.Title)
				assert.Equal(t, "KA-01-AM-1001 en route, ETA 7 minutes", msg.Body)
				assert.Equal(t, "dispatched", msg.Event)

				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectDispatchLookup(mock, 101, 1, "ambulance", 7)
		mock.ExpectQuery(`SELECT "call_sign" FROM "units" WHERE "units"\."id" = \$1 ORDER BY "units"\."id" LIMIT \$[0-9]+`).
			WithArgs(int64(1), 1).
			WillReturnRows(sqlmock.NewRows([]string{"call_sign"}).AddRow("KA-01-AM-1001"))
		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE services = '' OR services LIKE \$1`).
			WithArgs("%ambulance%").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "services", "created_at"}).
				AddRow("https://example.com/push", "test_p256dh", "test_auth", "", time.Now()))

		wp.Notify(Job{DispatchID: 101, Event: EventDispatched})
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectDispatchLookup(mock, 102, 2, "fire", 5)
		mock.ExpectQuery(`SELECT "call_sign" FROM "units" WHERE "units"\."id" = \$1 ORDER BY "units"\."id" LIMIT \$[0-9]+`).
			WithArgs(int64(2), 1).
			WillReturnRows(sqlmock.NewRows([]string{"call_sign"}).AddRow("KA-01-FT-101"))
		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE services = '' OR services LIKE \$1`).
			WithArgs("%fire%").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "services", "created_at"}).
				AddRow("https://example.com/expired", "test_p256dh", "test_auth", "fire", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"\."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Notify(Job{DispatchID: 102, Event: EventDispatched})

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to unit id when lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				var msg struct {
					Body string `json:"body"`
				}
				require.NoError(t, json.Unmarshal(payload, &msg))
				assert.Equal(t, "Unit 3 is back in service", msg.Body)

				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectDispatchLookup(mock, 103, 3, "police", 4)
		mock.ExpectQuery(`SELECT "call_sign" FROM "units" WHERE "units"\."id" = \$1 ORDER BY "units"\."id" LIMIT \$[0-9]+`).
			WithArgs(int64(3), 1).
			WillReturnError(fmt.Errorf("unit not found"))
		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE services = '' OR services LIKE \$1`).
			WithArgs("%police%").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "services", "created_at"}).
				AddRow("https://example.com/fallback", "test_p256dh", "test_auth", "police", time.Now()))

		wp.Notify(Job{DispatchID: 103, Event: EventReleased})
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
