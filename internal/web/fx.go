package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"go.uber.org/fx"
)

var Module = fx.Module("web",
	fx.Provide(
		NewServer,
	),
	fx.Invoke(registerHooks),
)

// Binds the port on start so a taken port fails the app instead of a goroutine.
func registerHooks(lc fx.Lifecycle, srvr *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srvr.Addr)
			if err != nil {
				return err
			}

			go func() {
				if err := srvr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("error serving", "err", err)
				}
			}()
			slog.Info("started web server", "addr", srvr.Addr)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})
}
