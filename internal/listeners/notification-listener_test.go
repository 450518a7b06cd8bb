package listeners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"renovation-system/internal/entities"
	"renovation-system/internal/events"
	"renovation-system/pkg/config"
)

type fakeTelegram struct {
	messages []string
	chatIDs  []int64
	err      error
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID int64, text string) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.messages = append(f.messages, text)
	return f.err
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func sampleOrder() entities.Order {
	arrival := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	regionID := uuid.New()

	return entities.Order{
		ID:      uuid.New(),
		Name:    strPtr("Alisher"),
		Phone:   strPtr("+998901112233"),
		Comment: strPtr("oshxona uchun"),

		Longitude: floatPtr(69.2401),
		Latitude:  floatPtr(41.2995),

		RegionID: &regionID,
		Region:   &entities.Region{ID: regionID, Name: "Toshkent"},

		WorkerArrivalDate: &arrival,
		EndDateJob:        &end,

		Rooms: []entities.RoomMeasurement{
			{Name: strPtr("Oshxona"), Key: strPtr("eni"), Value: strPtr("3.2m")},
		},

		Status: entities.StatusZavod,
	}
}

func TestBuildOrderMessage(t *testing.T) {
	message := BuildOrderMessage("🆕 <b>Yangi buyurtma!</b>", sampleOrder())

	assert.Contains(t, message, "🆕 <b>Yangi buyurtma!</b>")
	assert.Contains(t, message, "<b>Mijoz:</b> Alisher")
	assert.Contains(t, message, "<b>Telefon raqami:</b> +998901112233")
	assert.Contains(t, message, "<b>Hudud:</b> Toshkent")
	assert.Contains(t, message, "<b>Izoh:</b> oshxona uchun")
	assert.Contains(t, message, "5-mart 2026")
	assert.Contains(t, message, "12-mart 2026")
	assert.Contains(t, message, "<b>Xona 1:</b> Oshxona — <i>eni:</i> 3.2m")
	assert.Contains(t, message, "yandex.com/maps")
}

func TestBuildOrderMessageEscapesHTML(t *testing.T) {
	order := sampleOrder()
	order.Name = strPtr("<script>alert(1)</script>")

	message := BuildOrderMessage("title", order)
	assert.NotContains(t, message, "<script>")
	assert.Contains(t, message, "&lt;script&gt;")
}

func TestBuildOrderMessageMissingFields(t *testing.T) {
	order := entities.Order{ID: uuid.New(), Status: entities.StatusZavod}

	message := BuildOrderMessage("title", order)
	assert.Contains(t, message, "—")
	assert.NotContains(t, message, "yandex.com/maps")
	assert.NotContains(t, message, "Xona")
}

func TestListenerSendsToConfiguredChat(t *testing.T) {
	tg := &fakeTelegram{}
	listener := NewNotificationListener(tg, config.TelegramConfig{ChatID: 42}, zap.NewNop())

	err := listener.handleDispatched(context.Background(), events.OrderDispatched{Order: sampleOrder()})
	require.NoError(t, err)

	require.Len(t, tg.messages, 1)
	assert.Equal(t, int64(42), tg.chatIDs[0])
	assert.Contains(t, tg.messages[0], "Yangi buyurtma")
}

func TestListenerSwallowsSendErrors(t *testing.T) {
	tg := &fakeTelegram{err: errors.New("telegram недоступен")}
	listener := NewNotificationListener(tg, config.TelegramConfig{ChatID: 42}, zap.NewNop())

	err := listener.handleCompleted(context.Background(), events.OrderCompleted{Order: sampleOrder()})
	assert.NoError(t, err)
}

func TestListenerSkipsWithoutChatID(t *testing.T) {
	tg := &fakeTelegram{}
	listener := NewNotificationListener(tg, config.TelegramConfig{}, zap.NewNop())

	err := listener.handleChanged(context.Background(), events.OrderChanged{Order: sampleOrder()})
	require.NoError(t, err)
	assert.Empty(t, tg.messages)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	tg := &fakeTelegram{err: errors.New("telegram недоступен")}
	listener := NewNotificationListener(tg, config.TelegramConfig{ChatID: 42}, zap.NewNop())

	for i := 0; i < 10; i++ {
		_ = listener.handleChanged(context.Background(), events.OrderChanged{Order: sampleOrder()})
	}

	// После пяти подряд неудач breaker разомкнут и до Telegram
	// обращения не доходят.
	assert.Less(t, len(tg.messages), 10)
	assert.GreaterOrEqual(t, len(tg.messages), 5)
}
