package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/framing"
	"github.com/vuuvv/vdplay/log"
	"github.com/vuuvv/vdplay/metrics"
	"github.com/vuuvv/vdplay/tcp"
	"github.com/vuuvv/vdplay/utils"
)

const defaultDirectPlayAddress = ":47624"

// NewListenCommand returns the command decoding live TCP and UDP traffic.
func NewListenCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Decode live traffic on TCP and UDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if config.TCP.Address == "" && config.UDP.Address == "" {
				config.TCP.Address = defaultDirectPlayAddress
				config.UDP.Address = defaultDirectPlayAddress
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listen(ctx, config)
		},
	}
	flags.bind(cmd, framing.Binary)
	return cmd
}

func logResult(transport string) tcp.Handler {
	logger := log.Named(transport)
	return func(peer string, result *core.ScanResult) error {
		if result.Abandoned || result.Filtered {
			return nil
		}
		fields := []zap.Field{zap.String("peer", peer), zap.Int("size", len(result.Packet))}
		m, ok := result.Data.(*dplay.Message)
		if !ok {
			logger.Debug("Not DirectPlay", fields...)
			return nil
		}
		fields = append(fields, zap.Stringer("verdict", m.Verdict))
		if m.Truncated() {
			fields = append(fields, zap.Bool("truncated", true))
		}
		logger.Info(m.Summary(), fields...)
		return nil
	}
}

func listen(ctx context.Context, config *core.Config) (err error) {
	var stops []func() error
	errs := make(chan error, 3)
	defer func() {
		for _, stop := range stops {
			if e := stop(); e != nil {
				log.Warn(e)
			}
		}
	}()

	if config.TCP.Address != "" {
		server := tcp.NewTCPServer(config)
		server.MessageHandle(logResult(tcp.TransportTCP))
		if err := server.Listen(); err != nil {
			return err
		}
		stops = append(stops, server.Stop)
		utils.Go("tcp", func() { errs <- server.Start() })
	}
	if config.UDP.Address != "" {
		server := tcp.NewUDPServer(config)
		server.MessageHandle(logResult(tcp.TransportUDP))
		if err := server.Listen(); err != nil {
			return err
		}
		stops = append(stops, server.Stop)
		utils.Go("udp", func() { errs <- server.Start() })
	}
	if config.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		hs := &http.Server{Addr: config.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		stops = append(stops, func() error {
			return errors.WithStack(hs.Close())
		})
		utils.Go("metrics", func() {
			log.Info("Metrics server start", zap.String("addr", config.MetricsAddress))
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errs <- errors.WithStack(err)
			}
		})
	}

	select {
	case <-ctx.Done():
	case err = <-errs:
	}
	return err
}
