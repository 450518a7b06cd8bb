package listeners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"renovation-system/internal/entities"
	"renovation-system/internal/events"
	"renovation-system/pkg/config"
	"renovation-system/pkg/eventbus"
	"renovation-system/pkg/telegram"
)

// NotificationListener переводит события жизненного цикла заказа в
// сообщения Telegram-каналу производства. Отправка огорожена
// circuit breaker'ом: лежащий Telegram не задерживает обработчики и
// не копит горутины на таймаутах.
type NotificationListener struct {
	telegramService telegram.ServiceInterface
	breaker         *gobreaker.CircuitBreaker
	chatID          int64
	logger          *zap.Logger
}

func NewNotificationListener(
	telegramService telegram.ServiceInterface,
	cfg config.TelegramConfig,
	logger *zap.Logger,
) *NotificationListener {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "telegram",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Смена состояния circuit breaker",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &NotificationListener{
		telegramService: telegramService,
		breaker:         breaker,
		chatID:          cfg.ChatID,
		logger:          logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderDispatchedEvent, l.handleDispatched)
	bus.Subscribe(events.OrderChangedEvent, l.handleChanged)
	bus.Subscribe(events.OrderCompletedEvent, l.handleCompleted)
	l.logger.Info("NotificationListener подписан на события заказа")
}

func (l *NotificationListener) handleDispatched(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderDispatched)
	if !ok {
		return nil
	}
	return l.send(ctx, "🆕 <b>Yangi buyurtma!</b>", e.Order)
}

func (l *NotificationListener) handleChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderChanged)
	if !ok {
		return nil
	}
	return l.send(ctx, "🔧 <b>Zakazga o‘zgartirishlar kiritildi!</b>", e.Order)
}

func (l *NotificationListener) handleCompleted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderCompleted)
	if !ok {
		return nil
	}
	return l.send(ctx, "🎉 <b>Buyurtma muvaffaqiyatli yakunlandi!</b>", e.Order)
}

func (l *NotificationListener) send(ctx context.Context, title string, order entities.Order) error {
	if l.chatID == 0 {
		l.logger.Warn("TELEGRAM_CHAT_ID не задан, уведомление пропущено")
		return nil
	}

	message := BuildOrderMessage(title, order)

	_, err := l.breaker.Execute(func() (interface{}, error) {
		return nil, l.telegramService.SendMessage(ctx, l.chatID, message)
	})
	if err != nil {
		// Неудача уведомления никогда не влияет на сам заказ.
		l.logger.Error("Не удалось отправить уведомление в Telegram",
			zap.String("orderId", order.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

var uzbekMonths = [...]string{
	"yanvar", "fevral", "mart", "aprel", "may", "iyun",
	"iyul", "avgust", "sentabr", "oktabr", "noyabr", "dekabr",
}

func formatDateUzbek(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return fmt.Sprintf("%d-%s %d", t.Day(), uzbekMonths[t.Month()-1], t.Year())
}

// BuildOrderMessage собирает HTML-сообщение о заказе для общего
// канала производства.
func BuildOrderMessage(title string, order entities.Order) string {
	escape := telegram.EscapeHTML

	regionName := ""
	if order.Region != nil {
		regionName = order.Region.Name
	}

	var roomDetails []string
	for i, room := range order.Rooms {
		roomDetails = append(roomDetails, fmt.Sprintf(
			"🛋️ <b>Xona %d:</b> %s — <i>%s:</i> %s",
			i+1,
			escape(strDeref(room.Name)),
			escape(strDeref(room.Key)),
			escape(strDeref(room.Value)),
		))
	}

	var location string
	if order.Longitude != nil && order.Latitude != nil {
		locationLink := fmt.Sprintf(
			"https://yandex.com/maps/?ll=%f,%f&z=16&rtext=~%f,%f&rtt=auto",
			*order.Longitude, *order.Latitude, *order.Latitude, *order.Longitude,
		)
		location = fmt.Sprintf(`📌 <b>Joylashuv:</b> <a href="%s">Xaritada ochish (Yandex)</a>`, locationLink)
	}

	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	sb.WriteString(fmt.Sprintf("👤 <b>Mijoz:</b> %s\n", escape(strDeref(order.Name))))
	sb.WriteString(fmt.Sprintf("📞 <b>Telefon raqami:</b> %s\n", escape(strDeref(order.Phone))))
	sb.WriteString(fmt.Sprintf("📍 <b>Hudud:</b> %s\n", escape(regionName)))
	sb.WriteString(fmt.Sprintf("💬 <b>Izoh:</b> %s\n\n", escape(strDeref(order.Comment))))
	sb.WriteString(fmt.Sprintf("🚚 <b>Usta kelish sanasi:</b> %s\n", formatDateUzbek(order.WorkerArrivalDate)))
	sb.WriteString(fmt.Sprintf("🛠️ <b>Ish tugash sanasi:</b> %s\n", formatDateUzbek(order.EndDateJob)))

	if len(roomDetails) > 0 {
		sb.WriteString("\n" + strings.Join(roomDetails, "\n") + "\n")
	}
	if location != "" {
		sb.WriteString("\n" + location)
	}

	return strings.TrimSpace(sb.String())
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
