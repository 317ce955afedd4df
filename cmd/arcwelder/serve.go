package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/log"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a data directory over HTTP and weld or straighten files in it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to bind the server to",
				Value: ":9091",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Data directory to use",
				Value: "./data",
			},
			LogLevelFlag,
			LogFormatFlag,
		},
		Action: serveAction,
	}
}

// withAccessLog sets the CORS headers and logs every request.
func withAccessLog(lg *log.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		lg.Debug("request", zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.String("remote", req.RemoteAddr))
		h.ServeHTTP(w, req)
	})
}

func serveAction(c *cli.Context) error {
	dir := c.String("dir")
	lg, err := newLogger(c, log.RunContext{Command: "serve"})
	if err != nil {
		return err
	}
	defer lg.Sync()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return cli.Exit(err.Error(), exitIO)
	}

	a := newAPI(dir, lg)
	defer a.Close()

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           withAccessLog(lg, a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	lg.Info("listening", zap.String("addr", srv.Addr), zap.String("dir", dir))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.Exit(err.Error(), exitIO)
	}
	return nil
}
