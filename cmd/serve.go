// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"sqlagent/cli/internal/api"
	"sqlagent/cli/internal/assistant"
	"sqlagent/cli/internal/bridge"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr     string
	serveGRPCAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalog questions over HTTP",
	Long: `The serve command exposes the assistant as an HTTP endpoint for chatbot
integrations:

  POST /query   {"question": "...", "api_key": "..."}
  GET  /health

With --grpc-addr the agent is also published over gRPC so other sqlagent
installations can use it through AGENT_GRPC_ADDR.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return reportConnError(err)
		}
		defer db.Close()

		a, closer, err := buildAgent(cfg, db)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		addr := cfg.API.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		session := &assistant.Session{Agent: a, Timeout: cfg.Agent.Timeout, Verbose: verbose}
		srv := api.NewServer(session,
			api.WithAPIKey(cfg.API.Key),
			api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst))
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		var (
			grpcSrv *grpc.Server
			grpcLis net.Listener
		)
		if serveGRPCAddr != "" {
			if grpcLis, err = net.Listen("tcp", serveGRPCAddr); err != nil {
				return err
			}
			grpcSrv = grpc.NewServer()
			bridge.Serve(grpcSrv, a)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			pterm.Info.Printfln("Listening on %s", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		if grpcLis != nil {
			g.Go(func() error {
				pterm.Info.Printfln("Agent published over gRPC on %s", serveGRPCAddr)
				return grpcSrv.Serve(grpcLis)
			})
		}

		g.Go(func() error {
			<-gctx.Done()
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if grpcSrv != nil {
				grpcSrv.GracefulStop()
			}
			return httpSrv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default API_ADDR or :8000)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "also publish the agent over gRPC on this address")
}
