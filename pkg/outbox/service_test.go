package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/dbtest"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

func TestEmitWritesEnvelopeInTx(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil)
	orderID := uuid.New()
	userID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventReturnRequested,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{UserID: userID, Role: enums.RoleUser},
			Data:          map[string]string{"sku": "PX-128"},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, orderID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.Equal(t, userID, envelope.Actor.UserID)
	require.JSONEq(t, `{"sku":"PX-128"}`, string(envelope.Data))
}

func TestEmitRollsBackWithTx(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          struct{}{},
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEmitRequiresTxAndKnownType(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderPlaced}))

	db := dbtest.Open(t)
	require.Error(t, svc.Emit(context.Background(), db, DomainEvent{EventType: "nope"}))
}

func TestRepositoryLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)

	fresh := models.OutboxEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	failing := models.OutboxEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(db, fresh))
	require.NoError(t, repo.Insert(db, failing))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(db, rows[0].ID))
	require.NoError(t, repo.MarkTerminalTx(db, rows[1].ID, errors.New("gone"), 3))

	rows, err = repo.FetchUnpublishedForPublish(db, 10, 3)
	require.NoError(t, err)
	require.Empty(t, rows)

	deleted, err := repo.DeletePublishedBefore(nil, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func TestEmitRejectsMissingAggregate(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil)

	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventWalletCredited,
		AggregateType: enums.AggregateWallet,
		Data:          struct{}{},
	})
	require.EqualError(t, err, "aggregate id is required")
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := newEnvelope(DomainEvent{EventType: enums.EventOrderPlaced, Data: map[string]int{"qty": 2}})
	require.NoError(t, err)
	require.Equal(t, EnvelopeVersion, env.Version)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	require.Equal(t, env.EventID, decoded.EventID)
	require.JSONEq(t, `{"qty":2}`, string(decoded.Data))

	for name, body := range map[string]string{
		"garbage":    `{"version":`,
		"version":    `{"version":0,"eventId":"` + uuid.NewString() + `","data":{}}`,
		"event id":   `{"version":1,"eventId":"nope","data":{}}`,
		"null data":  `{"version":1,"eventId":"` + uuid.NewString() + `","data":null}`,
		"empty data": `{"version":1,"eventId":"` + uuid.NewString() + `"}`,
	} {
		_, err := DecodeEnvelope([]byte(body))
		require.Error(t, err, name)
	}
}

func TestDLQRepositoryInsertAndPurge(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewDLQRepository(db)
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  4,
	}
	now := time.Now().UTC()

	old := NewDLQEntry(event, enums.OutboxDLQReasonMaxAttempts, errors.New(strings.Repeat("x", 2000)), now.Add(-48*time.Hour))
	require.Len(t, *old.ErrorMessage, maxLastErrorLen)
	require.Equal(t, 4, old.AttemptCount)
	require.NoError(t, repo.InsertTx(db, old))
	require.NoError(t, repo.InsertTx(db, NewDLQEntry(event, enums.OutboxDLQReasonNonRetryable, nil, now)))
	require.Error(t, repo.InsertTx(nil, old))

	deleted, err := repo.DeleteBefore(nil, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	var remaining []models.OutboxDLQ
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Nil(t, remaining[0].ErrorMessage)
}
