package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/topicsender/gateway"
)

var (
	// The host to listen on
	host string

	// The port to listen for http requests on
	httpPort string
)

func init() {
	flags := ServeCmd.Flags()

	flags.StringVar(&httpPort, "http-port", "7362", "The port to listen to HTTP requests on")
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "The host to listen on")
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP topic gateway",
	Long: `Run the HTTP topic gateway

Usage
	topicsender serve
	curl 'localhost:7362/topic?host=world.example&port=26200&query=status'

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, log, c, err := setup(ctx)
		if err != nil {
			return err
		}
		defer log.Sync() // nolint:errcheck

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		// Every topic opens its own socket
		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		router := gateway.NewRouter(gateway.Options{
			Sender: c,
			Debug:  conf.DebugHTTP,
			Log:    log.Named("gateway"),
		})

		addr := net.JoinHostPort(host, httpPort)
		listener, err := reuseport.Listen("tcp", addr)
		if err != nil {
			return err
		}

		s := &http.Server{
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block the graceful shutdown handling below
		go func() {
			if err := s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		log.Info("Listening",
			zap.String("addr", addr),
			zap.Duration("connectTimeout", conf.ConnectTimeout),
			zap.Duration("sendTimeout", conf.SendTimeout),
			zap.Duration("receiveTimeout", conf.ReceiveTimeout),
			zap.Duration("disconnectTimeout", conf.DisconnectTimeout))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// In flight topics have 5 seconds to finish
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
