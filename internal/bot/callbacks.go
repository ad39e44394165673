package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем сразу, чтобы у кнопки пропали "часики"
	if err := b.tgService.AnswerCallback(callback.ID, ""); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to answer callback")
	}
	if callback.Message == nil {
		return
	}

	cmd, err := ParseCommand(callback.Data)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Bad callback data")
		return
	}
	handler, ok := b.commands[cmd.Kind]
	if !ok {
		zerolog.Ctx(ctx).Warn().Str("data", callback.Data).Msg("Unknown callback")
		return
	}

	if b.metrics != nil {
		b.metrics.CallbacksProcessed.WithLabelValues(string(cmd.Kind)).Inc()
	}
	zerolog.Ctx(ctx).Debug().Str("kind", string(cmd.Kind)).Str("arg", cmd.Arg).Msg("Handling callback")

	handler(ctx, callbackRequest{
		callbackID: callback.ID,
		chatID:     callback.Message.Chat.ID,
		messageID:  callback.Message.MessageID,
		userID:     callback.From.ID,
		username:   callback.From.UserName,
	}, cmd)
}
