package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"ecg-notify/internal/models"
	"ecg-notify/internal/notify"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	patients []string
	alerts   []models.AlertEvent
	err      error
}

func (d *recordingDispatcher) SendEmergencyNotification(ctx context.Context, patientID string, alert models.AlertEvent) (*notify.AggregateResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients = append(d.patients, patientID)
	d.alerts = append(d.alerts, alert)
	if d.err != nil {
		return nil, d.err
	}
	return &notify.AggregateResult{Success: true}, nil
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.patients...)
}

func setupConsumer(t *testing.T, dispatcher Dispatcher) (*miniredis.Miniredis, *redis.Client, *AlertConsumer) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	c := NewAlertConsumer(rdb, dispatcher, "ecg:alerts", "ecg-notify", "ecg-notify-1", zap.NewNop())
	return mr, rdb, c
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestAlertConsumer_DispatchesAlert(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	_, rdb, c := setupConsumer(t, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "ecg:alerts",
		Values: map[string]interface{}{
			"data": `{"patient_id":"p-1","alert":{"type":"heart_rate_high","heartRate":185,"timestamp":1700000000000}}`,
		},
	}).Err()
	require.NoError(t, err)

	waitFor(t, 3*time.Second, func() bool {
		return len(dispatcher.dispatched()) == 1
	})

	assert.Equal(t, []string{"p-1"}, dispatcher.dispatched())

	dispatcher.mu.Lock()
	alert := dispatcher.alerts[0]
	dispatcher.mu.Unlock()
	assert.Equal(t, models.AlertTypeHeartRateHigh, alert.Type)
	require.NotNil(t, alert.HeartRate)
	assert.Equal(t, 185, *alert.HeartRate)

	// 处理完成后条目被 ack，pending 清零
	waitFor(t, 3*time.Second, func() bool {
		pending, err := rdb.XPending(ctx, "ecg:alerts", "ecg-notify").Result()
		return err == nil && pending.Count == 0
	})
}

func TestAlertConsumer_MalformedMessageSkipped(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	_, rdb, c := setupConsumer(t, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	// 坏条目在前，好条目在后；坏条目不能卡住消费
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "ecg:alerts",
		Values: map[string]interface{}{"data": "not-json"},
	}).Err())
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "ecg:alerts",
		Values: map[string]interface{}{"data": `{"patient_id":"p-2","alert":{"type":"emergency"}}`},
	}).Err())

	waitFor(t, 3*time.Second, func() bool {
		return len(dispatcher.dispatched()) == 1
	})
	assert.Equal(t, []string{"p-2"}, dispatcher.dispatched())
}

func TestAlertConsumer_DispatchErrorContinues(t *testing.T) {
	dispatcher := &recordingDispatcher{err: assert.AnError}
	_, rdb, c := setupConsumer(t, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	for _, payload := range []string{
		`{"patient_id":"p-1","alert":{"type":"emergency"}}`,
		`{"patient_id":"p-2","alert":{"type":"emergency"}}`,
	} {
		require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: "ecg:alerts",
			Values: map[string]interface{}{"data": payload},
		}).Err())
	}

	// 派发失败也继续消费后续条目
	waitFor(t, 3*time.Second, func() bool {
		return len(dispatcher.dispatched()) == 2
	})
}
