package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"ai_server_builder/bot"
	"ai_server_builder/builder"
	"ai_server_builder/config"
	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/logger"
	"ai_server_builder/platform"
	"ai_server_builder/server"
)

func newApp(cfg *config.Config) *fx.App {
	fxLogger := fx.NopLogger
	if cfg.LogLevel == "debug" {
		fxLogger = fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l}
		})
	}

	return fx.New(
		fxLogger,
		fx.Supply(cfg),
		config.Module,
		logger.Module,
		fx.Provide(
			buildLLM,
			generator.NewAgent,
			builder.NewPlanStore,
			dialog.NewDispatcher,
			newBuilder,
			newGateway,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(registerBot, registerHTTP),
	)
}

func newBuilder(agent *generator.Agent, bc config.BuilderConfig, dc config.DialogConfig, log *slog.Logger) *builder.Builder {
	return builder.New(agent, builder.Options{
		RoleName:    bc.RoleName,
		ChannelName: bc.ChannelName,
		PacingDelay: bc.PacingDelay,
		Timeouts: builder.Timeouts{
			Confirm: dc.ConfirmTimeout,
			Text:    dc.TextTimeout,
			Content: dc.ContentTimeout,
		},
	}, log)
}

func newGateway(dc config.DiscordConfig, log *slog.Logger) (*platform.Gateway, error) {
	return platform.NewGateway(dc.Token, log)
}

func newRouter(dc config.DiscordConfig, agent *generator.Agent, store *builder.PlanStore, b *builder.Builder,
	dialogs *dialog.Dispatcher, gw *platform.Gateway, log *slog.Logger) *bot.Router {
	return bot.NewRouter(dc.Prefix, agent, store, b, dialogs, gw, log)
}

func newHTTPServer(dc config.DiscordConfig, agent *generator.Agent, store *builder.PlanStore, log *slog.Logger) (*server.Server, error) {
	return server.New(agent, store, dc.Prefix, log)
}

func registerBot(lc fx.Lifecycle, gw *platform.Gateway, router *bot.Router, log *slog.Logger) {
	gw.OnMessage(router.Handle)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("connecting to discord")
			return gw.Open()
		},
		OnStop: func(context.Context) error {
			router.Close()
			return gw.Close()
		},
	})
}

func registerHTTP(lc fx.Lifecycle, hc config.HTTPConfig, srv *server.Server, log *slog.Logger) {
	if hc.Addr == "" {
		log.Info("http listener disabled")
		return
	}
	httpSrv := &http.Server{
		Addr:              hc.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", hc.Addr)
			if err != nil {
				return err
			}
			log.Info("starting http server", "addr", ln.Addr().String())
			go func() {
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		},
	})
}
