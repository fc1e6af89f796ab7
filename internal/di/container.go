package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/do/v2"
	"github.com/samber/oops"

	"github.com/amrahli/newsgate/internal/modules/item/allocator"
	linkageRepo "github.com/amrahli/newsgate/internal/modules/linkage/repository"
	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
	moderationService "github.com/amrahli/newsgate/internal/modules/moderation/service"
	"github.com/amrahli/newsgate/internal/modules/restyle"
	"github.com/amrahli/newsgate/internal/modules/session"
	"github.com/amrahli/newsgate/internal/modules/source"
	"github.com/amrahli/newsgate/internal/poller"
	"github.com/amrahli/newsgate/internal/shared/config"
	httpServer "github.com/amrahli/newsgate/internal/transport/http"
	telegramHandler "github.com/amrahli/newsgate/internal/transport/telegram"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Linkage Repository
	do.Provide(injector, func(i do.Injector) (linkageRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := linkageRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize linkage repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Linkage Service
	do.Provide(injector, func(i do.Injector) (*linkageService.Service, error) {
		repo := do.MustInvoke[linkageRepo.Repository](i)
		return linkageService.New(repo), nil
	})

	// Register ID Allocator
	do.Provide(injector, func(i do.Injector) (*allocator.Allocator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ids, err := allocator.New(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize id allocator").Wrap(err)
		}
		return ids, nil
	})

	// Register Delivery Ledgers
	do.Provide(injector, func(i do.Injector) (*source.Ledgers, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ledgers, err := source.NewLedgers(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize delivery ledgers").Wrap(err)
		}
		return ledgers, nil
	})

	// Register RSS Adapter
	do.Provide(injector, func(i do.Injector) (*source.RSSAdapter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ids := do.MustInvoke[*allocator.Allocator](i)
		ledgers := do.MustInvoke[*source.Ledgers](i)
		adapter, err := source.NewRSSAdapter(ids, ledgers, cfg.ImagesPath)
		if err != nil {
			return nil, oops.With("images_path", cfg.ImagesPath, "context", "failed to initialize rss adapter").Wrap(err)
		}
		return adapter, nil
	})

	// Register Channel Adapter
	do.Provide(injector, func(i do.Injector) (*source.ChannelAdapter, error) {
		ids := do.MustInvoke[*allocator.Allocator](i)
		ledgers := do.MustInvoke[*source.Ledgers](i)
		return source.NewChannelAdapter(ids, ledgers), nil
	})

	// Register Restyler
	do.Provide(injector, func(i do.Injector) (*restyle.Restyler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return restyle.New(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	})

	// Register Moderation Service
	do.Provide(injector, func(i do.Injector) (*moderationService.Service, error) {
		repo := do.MustInvoke[linkageRepo.Repository](i)
		b := do.MustInvoke[*bot.Bot](i)
		restyler := do.MustInvoke[*restyle.Restyler](i)
		return moderationService.New(repo, telegramHandler.NewNotifier(b), telegramHandler.NewPublisher(b), restyler), nil
	})

	// Register Poller
	do.Provide(injector, func(i do.Injector) (*poller.Poller, error) {
		cfg := do.MustInvoke[*config.Config](i)
		linkages := do.MustInvoke[*linkageService.Service](i)
		rss := do.MustInvoke[*source.RSSAdapter](i)
		channel := do.MustInvoke[*source.ChannelAdapter](i)
		queue := do.MustInvoke[*moderationService.Service](i)
		interval := time.Duration(cfg.PollInterval) * time.Second
		return poller.New(linkages, rss, channel, queue, interval), nil
	})

	// Register Session Store
	do.Provide(injector, func(i do.Injector) (*session.Store, error) {
		return session.NewStore(), nil
	})

	// Register State Machine
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Machine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sessions := do.MustInvoke[*session.Store](i)
		linkages := do.MustInvoke[*linkageService.Service](i)
		b := do.MustInvoke[*bot.Bot](i)
		p := do.MustInvoke[*poller.Poller](i)
		return telegramHandler.NewMachine(sessions, linkages, telegramHandler.NewAdminVerifier(b), p, cfg.OperatorPassword), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		machine := do.MustInvoke[*telegramHandler.Machine](i)
		channel := do.MustInvoke[*source.ChannelAdapter](i)
		moderation := do.MustInvoke[*moderationService.Service](i)
		return telegramHandler.New(machine, channel, moderation, cfg.ImagesPath), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		linkages := do.MustInvoke[*linkageService.Service](i)
		server := httpServer.New(cfg, linkages)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot. The handler is resolved lazily inside the default handler
	// because the handler stack itself needs the bot instance.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
				handler := do.MustInvoke[*telegramHandler.Handler](i)
				handler.HandleUpdate(ctx, b, update)
			}),
			bot.WithAllowedUpdates(bot.AllowedUpdates{
				"message",
				"channel_post",
				"callback_query",
				"my_chat_member",
			}),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	return nil
}
