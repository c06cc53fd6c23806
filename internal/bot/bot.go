package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"github.com/ovolkov/finbot/internal/conversation"
	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/report"
)

// Bot wires the conversation engine and report service to Telegram.
type Bot struct {
	tb      *tele.Bot
	engine  *conversation.Engine
	reports *report.Service
	log     zerolog.Logger
}

// New connects to the Telegram API and registers all handlers.
func New(token string, pollTimeout time.Duration, engine *conversation.Engine, reports *report.Service, log zerolog.Logger) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b := &Bot{tb: tb, engine: engine, reports: reports, log: log}
	b.register()
	return b, nil
}

// Start begins long polling. Blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info().Msg("bot started")
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) register() {
	type begin func(ctx context.Context, userID int64) conversation.Result

	commands := map[string]begin{
		"/start": b.engine.Start,
		"/help":  b.engine.Start,
		"/menu": func(context.Context, int64) conversation.Result {
			return b.engine.Menu()
		},
		"/balance":    b.engine.ShowBalance,
		"/categories": b.engine.ShowCategories,
		"/setbalance": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginSetBalance(id)
		},
		"/addcategory": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginAddCategory(id)
		},
		"/deletecategory": b.engine.BeginDeleteCategory,
		"/add_income": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginTransaction(id, repository.CategoryIncome)
		},
		"/add_expense": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginTransaction(id, repository.CategoryExpense)
		},
		"/add_income_list": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginBulkTransactions(id, repository.CategoryIncome)
		},
		"/add_expense_list": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginBulkTransactions(id, repository.CategoryExpense)
		},
		"/delete_transactions": b.engine.BeginMultiDelete,
		"/report": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginReport(id)
		},
		"/monthly": func(context.Context, int64) conversation.Result {
			return b.engine.Monthly(time.Now())
		},
		"/compare": func(ctx context.Context, id int64) conversation.Result {
			return b.engine.Compare(ctx, id, time.Now())
		},
		"/add_wish": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginAddWish(id)
		},
		"/add_wishes": func(_ context.Context, id int64) conversation.Result {
			return b.engine.BeginBulkWishes(id)
		},
		"/wishlist": func(ctx context.Context, id int64) conversation.Result {
			return b.engine.Wishlist(ctx, id, 1, false)
		},
		"/delete_wish": b.engine.BeginDeleteWish,
		"/edit_wish":   b.engine.BeginEditWish,
		"/history": func(context.Context, int64) conversation.Result {
			return b.engine.HistoryFilters()
		},
	}

	for cmd, h := range commands {
		h := h
		b.tb.Handle(cmd, func(c tele.Context) error {
			return b.deliver(c, h(context.Background(), c.Sender().ID))
		})
	}

	b.tb.Handle(tele.OnText, func(c tele.Context) error {
		res := b.engine.HandleText(context.Background(), c.Sender().ID, c.Text())
		return b.deliver(c, res)
	})

	b.tb.Handle(tele.OnCallback, func(c tele.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		res := b.engine.HandleCallback(context.Background(), c.Sender().ID, data)
		return b.deliver(c, res)
	})
}

// deliver renders a Result back to the chat: messages, callback acks and,
// for terminal report steps, the generated artifacts.
func (b *Bot) deliver(c tele.Context, res conversation.Result) error {
	if res.Ack != "" {
		if err := c.Respond(&tele.CallbackResponse{Text: res.Ack, ShowAlert: res.AckAlert}); err != nil {
			b.log.Warn().Err(err).Msg("callback respond")
		}
	} else if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			b.log.Warn().Err(err).Msg("callback respond")
		}
	}

	for _, msg := range res.Messages {
		if err := b.send(c, msg); err != nil {
			return err
		}
	}

	if res.Report != nil {
		return b.sendReport(c, res.Report.From, res.Report.To)
	}
	return nil
}

func (b *Bot) send(c tele.Context, msg conversation.Message) error {
	args := []interface{}{msg.Text}
	if markup := renderKeyboard(msg.Keyboard); markup != nil {
		args = append(args, markup)
	}
	if msg.Edit {
		err := c.Edit(args[0], args[1:]...)
		// editing fails when the text did not change; not worth surfacing
		if err != nil && !errors.Is(err, tele.ErrSameMessageContent) {
			return err
		}
		return nil
	}
	return c.Send(args[0], args[1:]...)
}

func (b *Bot) sendReport(c tele.Context, from, to time.Time) error {
	userID := c.Sender().ID
	rep, err := b.reports.BuildForPeriod(context.Background(), userID, from, to)
	if errors.Is(err, report.ErrNoOperations) {
		return c.Send("📉 No operations found for this period", renderKeyboard(conversation.Keyboard{Kind: conversation.KeyboardMain}))
	}
	if err != nil {
		b.log.Error().Err(err).Int64("user", userID).Msg("build report")
		return c.Send("❌ Something went wrong, try again.")
	}

	for _, chunk := range report.Chunks(rep.Lines(), report.ChunkSize) {
		if err := c.Send(strings.Join(chunk, "\n")); err != nil {
			return err
		}
	}

	artifacts, err := b.reports.Generate(rep, userID)
	if err != nil {
		b.log.Error().Err(err).Int64("user", userID).Msg("report artifacts")
		return c.Send("❌ Could not generate report files.")
	}

	csvDoc := &tele.Document{
		File:     tele.FromDisk(artifacts.CSVPath),
		FileName: filepath.Base(artifacts.CSVPath),
		Caption:  "📁 CSV report",
	}
	if err := c.Send(csvDoc); err != nil {
		return err
	}

	if artifacts.PDFPath != "" {
		pdfDoc := &tele.Document{
			File:     tele.FromDisk(artifacts.PDFPath),
			FileName: filepath.Base(artifacts.PDFPath),
			Caption:  "🧾 PDF report",
		}
		if err := c.Send(pdfDoc); err != nil {
			return err
		}
	}
	return nil
}
