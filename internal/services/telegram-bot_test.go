package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/pkg/config"
	"equipment-booking/pkg/constants"
)

type botTestEnv struct {
	bot      TelegramBotServiceInterface
	booking  *bookingTestEnv
	userRepo *fakeUserRepo
	tg       *fakeTelegramService
	cache    *fakeCache
}

func newBotTestEnv(users ...*entities.User) *botTestEnv {
	booking := newBookingTestEnv()
	userRepo := newFakeUserRepo(users...)
	tg := &fakeTelegramService{}
	cache := newFakeCache()

	cfg := config.TelegramConfig{CommandCooldown: 2 * time.Second}
	bot := NewTelegramBotService(tg, userRepo, booking.bookingRepo, booking.service,
		cache, cfg, zap.NewNop())

	return &botTestEnv{bot: bot, booking: booking, userRepo: userRepo, tg: tg, cache: cache}
}

func textUpdate(chatID int64, text string) dto.TelegramUpdate {
	return dto.TelegramUpdate{
		Message: &dto.TelegramMessage{
			Chat: dto.TelegramChat{ID: chatID},
			Text: text,
		},
	}
}

func linkedUser(id uint64, chatID int64) *entities.User {
	return &entities.User{
		ID:             id,
		Username:       "ivanov",
		Role:           constants.RoleUser,
		TelegramKey:    "abc123",
		TelegramChatID: null.Int64From(chatID),
	}
}

func (env *botTestEnv) lastReply(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, env.tg.sent)
	return env.tg.sent[len(env.tg.sent)-1].text
}

func TestSplitCommand(t *testing.T) {
	testCases := []struct {
		input   string
		command string
		args    string
	}{
		{"/start", "/start", ""},
		{"/start my-key", "/start", "my-key"},
		{"/start   my-key  ", "/start", "my-key"},
		{"/cancel@BookingBot 15", "/cancel", "15"},
		{"/help@BookingBot", "/help", ""},
	}

	for _, tc := range testCases {
		command, args := splitCommand(tc.input)
		assert.Equal(t, tc.command, command, tc.input)
		assert.Equal(t, tc.args, args, tc.input)
	}
}

func TestBotStart(t *testing.T) {
	ctx := context.Background()

	t.Run("привязка по ключу", func(t *testing.T) {
		user := &entities.User{ID: 1, Username: "ivanov", TelegramKey: "abc123"}
		env := newBotTestEnv(user)

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/start abc123"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "привязан")
		require.True(t, user.TelegramChatID.Valid)
		assert.Equal(t, int64(500), user.TelegramChatID.Int64)
	})

	t.Run("неизвестный ключ", func(t *testing.T) {
		env := newBotTestEnv()

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/start wrong-key"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "Ключ не найден")
	})

	t.Run("без ключа", func(t *testing.T) {
		env := newBotTestEnv()

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/start"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "/start <ключ>")
	})
}

func TestBotHelpAndUnknown(t *testing.T) {
	ctx := context.Background()

	env := newBotTestEnv()
	err := env.bot.HandleUpdate(ctx, textUpdate(500, "/help"))
	require.NoError(t, err)
	assert.Contains(t, env.lastReply(t), "/mybookings")

	env = newBotTestEnv()
	err = env.bot.HandleUpdate(ctx, textUpdate(500, "/frobnicate"))
	require.NoError(t, err)
	assert.Contains(t, env.lastReply(t), "Неизвестная команда")
}

func TestBotCooldown(t *testing.T) {
	ctx := context.Background()
	env := newBotTestEnv()

	require.NoError(t, env.bot.HandleUpdate(ctx, textUpdate(500, "/help")))
	// Повторная команда в период паузы молча игнорируется.
	require.NoError(t, env.bot.HandleUpdate(ctx, textUpdate(500, "/help")))
	assert.Len(t, env.tg.sent, 1)

	// Другой чат на паузу первого не попадает.
	require.NoError(t, env.bot.HandleUpdate(ctx, textUpdate(501, "/help")))
	assert.Len(t, env.tg.sent, 2)
}

func TestBotMyBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("непривязанный чат", func(t *testing.T) {
		env := newBotTestEnv()

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/mybookings"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "не привязан")
	})

	t.Run("нет активных бронирований", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/mybookings"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "нет активных")
	})

	t.Run("список с бронированиями", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))
		start := time.Now().Add(time.Hour)
		env.booking.bookingRepo.activeBookings = []dto.BookingDetailsDTO{
			{ID: 7, Status: constants.BookingStatusApproved, StartTime: start, EndTime: start.Add(time.Hour), EquipmentName: "Осциллограф"},
		}

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/mybookings"))
		require.NoError(t, err)
		reply := env.lastReply(t)
		assert.Contains(t, reply, "#7 Осциллограф")
		assert.Contains(t, reply, "Подтверждено")
	})
}

func TestBotCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("отмена своего бронирования", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))
		env.booking.addEquipment(1, true, false, 0)
		env.booking.addBooking(7, 1, 1, constants.BookingStatusApproved)

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/cancel 7"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "Бронирование #7 отменено")
		assert.Equal(t, constants.BookingStatusCancelled, env.booking.bookingRepo.bookings[7].Status)
	})

	t.Run("чужое бронирование", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))
		env.booking.addEquipment(1, true, false, 0)
		env.booking.addBooking(7, 2, 1, constants.BookingStatusApproved)

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/cancel 7"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "Нет права")
		assert.Equal(t, constants.BookingStatusApproved, env.booking.bookingRepo.bookings[7].Status)
	})

	t.Run("несуществующий номер", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/cancel 99"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "не найдено")
	})

	t.Run("мусор вместо номера", func(t *testing.T) {
		env := newBotTestEnv(linkedUser(1, 500))

		err := env.bot.HandleUpdate(ctx, textUpdate(500, "/cancel seven"))
		require.NoError(t, err)
		assert.Contains(t, env.lastReply(t), "/cancel <id>")
	})
}

func TestBotCancelCallback(t *testing.T) {
	ctx := context.Background()

	env := newBotTestEnv(linkedUser(1, 500))
	env.booking.addEquipment(1, true, false, 0)
	env.booking.addBooking(7, 1, 1, constants.BookingStatusPending)

	update := dto.TelegramUpdate{
		CallbackQuery: &dto.TelegramCallbackQuery{
			ID:      "cb-1",
			Data:    "cancel:7",
			Message: &dto.TelegramMessage{Chat: dto.TelegramChat{ID: 500}},
		},
	}
	err := env.bot.HandleUpdate(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusCancelled, env.booking.bookingRepo.bookings[7].Status)
	assert.Contains(t, env.lastReply(t), "отменено")
}
