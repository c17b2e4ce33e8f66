// Command chatgames runs the chat game bot.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the chat webhook, REST diagnostics,
//     WebSocket chat and an /mcp HTTP endpoint, plus the session sweeper
//  2. "mcp" – runs an MCP stdio server against a running bot, starting an internal one if none answers
//  3. "play" – chats with the bot on the terminal
//
// Flags (or the matching environment variables, optionally from a .env file) control
// host/port, session timeouts, game tuning, logging and optional ngrok tunneling.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/chatgames/api"
	"github.com/wricardo/mcp-training/chatgames/bot"
	"github.com/wricardo/mcp-training/chatgames/config"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/logging"
	"github.com/wricardo/mcp-training/chatgames/transport/mcp"
	"github.com/wricardo/mcp-training/chatgames/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Chat Games Bot"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newApp builds the command tree.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "chatgames",
		Usage:   AppName,
		Version: Version,
		Flags:   config.Flags(),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with chat webhook, WebSocket, diagnostics and /mcp endpoint",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run an MCP stdio server proxying to the bot server",
				Action: runMCP,
			},
			{
				Name:  "play",
				Usage: "Chat with the bot in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Value: "console", Usage: "user ID to play as"},
					&cli.StringFlag{Name: "name", Value: os.Getenv("USER"), Usage: "display name"},
				},
				Action: runPlay,
			},
		},
	}
}

// components are the long-lived pieces shared by every command.
type components struct {
	store      *session.Store
	games      service.GameService
	dispatcher *bot.Dispatcher
}

// buildComponents wires the session store, game service and dispatcher.
func buildComponents(cfg *config.Config, logger *zap.Logger) *components {
	store := session.NewStore(session.Config{
		Timeout: cfg.SessionTimeout,
		NewState: service.NewStateFactory(service.GameOptions{
			RPSTargetScore: cfg.RPSTargetScore,
			CenterBias:     cfg.OpeningCenterBias,
		}),
		Logger: logger.Named("session"),
	})
	games := service.NewGameService(store, logger.Named("service"))
	return &components{
		store:      store,
		games:      games,
		dispatcher: bot.NewDispatcher(games, logger.Named("bot")),
	}
}

// setup reads the configuration and builds the logger.
func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// newHTTPHandler combines the API server and the /mcp endpoint.
func newHTTPHandler(c *components, hub *websocket.Hub, mcpBaseURL string, logger *zap.Logger) http.Handler {
	apiServer := api.NewServer(c.games, c.dispatcher, hub, logger.Named("api"))
	mcpClient := mcp.NewClient(mcpBaseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server, WebSocket hub, session sweeper and optional
// ngrok tunnel, and stops them all when ctx is cancelled.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	c := buildComponents(cfg, logger)
	hub := websocket.NewHub(c.dispatcher, logger.Named("websocket"))
	handler := newHTTPHandler(c, hub, "http://"+cfg.Addr(), logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("addr", cfg.Addr()),
		zap.Duration("session_timeout", cfg.SessionTimeout),
		zap.Duration("sweep_interval", cfg.SweepInterval))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		if err := c.store.RunSweeper(gctx, cfg.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("chat", "http://"+cfg.Addr()+"/api/messages"),
			zap.String("websocket", "ws://"+cfg.Addr()+"/ws?user=<user_id>"),
			zap.String("mcp", "http://"+cfg.Addr()+"/mcp"))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cfg.Ngrok.Enabled {
		g.Go(func() error {
			return serveNgrok(gctx, cfg.Ngrok, handler, logger.Named("ngrok"))
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		c.store.Clear()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done.
func serveNgrok(ctx context.Context, cfg config.NgrokConfig, handler http.Handler, logger *zap.Logger) error {
	tunnel := ngrokConfig.HTTPEndpoint()
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", zap.String("domain", cfg.Domain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		// The local server keeps running without a tunnel.
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return nil
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	logger.Info("ngrok tunnel established",
		zap.String("url", tun.URL()),
		zap.String("chat", tun.URL()+"/api/messages"),
		zap.String("mcp", tun.URL()+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
	return nil
}

// runMCP runs an MCP stdio server. It reuses the bot server at cfg.ServerURL
// when it answers; otherwise it starts an internal HTTP server on a random
// loopback port and targets that.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cfg.ServerURL
	if !serverAvailable(ctx, baseURL) {
		logger.Info("no bot server found, starting internal HTTP server", zap.String("checked", baseURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		c := buildComponents(cfg, logger)
		httpServer := &http.Server{Handler: api.NewServer(c.games, c.dispatcher, nil, logger.Named("api"))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		go c.store.RunSweeper(ctx, cfg.SweepInterval)
		defer httpServer.Close()
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))
	if err := mcp.NewClient(baseURL).ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// serverAvailable reports whether a bot server answers its health check.
func serverAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runPlay chats with the bot over stdin/stdout.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	c := buildComponents(cfg, logger)
	go c.store.RunSweeper(ctx, cfg.SweepInterval)

	fmt.Fprintf(os.Stdout, "%s v%s - type /help to start, Ctrl-D to exit\n", AppName, Version)
	return playLoop(ctx, c.dispatcher, os.Stdin, os.Stdout, cmd.String("user"), cmd.String("name"))
}

// playLoop feeds each input line to the dispatcher and prints the replies.
func playLoop(ctx context.Context, d *bot.Dispatcher, in io.Reader, out io.Writer, userID, displayName string) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			result := d.OnText(ctx, userID, displayName, text)
			for _, reply := range result.Replies {
				fmt.Fprintln(out, reply.Text)
				fmt.Fprintln(out)
			}
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
