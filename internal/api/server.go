package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ivagate/internal/avatar"
	"ivagate/internal/classifier"
	"ivagate/internal/domain"
	"ivagate/internal/queue"
	"ivagate/internal/session"
	"ivagate/internal/storage"
	"ivagate/internal/wallet"
)

type Chatter interface {
	Handle(ctx context.Context, msg domain.Message) (*session.Outcome, error)
}

// WalletStore is the tracked wallet set with its balance cache.
type WalletStore interface {
	AddWallet(ctx context.Context, address string) error
	RemoveWallet(ctx context.Context, address string) error
	Wallets(ctx context.Context) ([]string, error)
	WalletExists(ctx context.Context, address string) (bool, error)
	SetBalance(ctx context.Context, address string, balance float64) error
	Balance(ctx context.Context, address string) (float64, bool, error)
}

// Options holds the collaborators; everything except Classifier and Broker
// may be nil, which disables the matching endpoints.
type Options struct {
	Chat       Chatter
	Classifier classifier.Classifier
	Repo       storage.ExchangeRepository
	Wallets    WalletStore
	Source     wallet.BalanceSource
	Wallet     *wallet.Wallet
	Publisher  queue.Publisher
	Broker     *SSEBroker
	Sink       avatar.Sink
}

type Server struct {
	echo       *echo.Echo
	chat       Chatter
	classifier classifier.Classifier
	repo       storage.ExchangeRepository
	wallets    WalletStore
	source     wallet.BalanceSource
	wallet     *wallet.Wallet
	publisher  queue.Publisher
	sse        *SSEBroker
	sink       avatar.Sink
}

func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if opts.Broker == nil {
		opts.Broker = NewSSEBroker()
	}
	if opts.Sink == nil {
		opts.Sink = opts.Broker
	}

	s := &Server{
		echo:       e,
		chat:       opts.Chat,
		classifier: opts.Classifier,
		repo:       opts.Repo,
		wallets:    opts.Wallets,
		source:     opts.Source,
		wallet:     opts.Wallet,
		publisher:  opts.Publisher,
		sse:        opts.Broker,
		sink:       opts.Sink,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/api/events", s.events)

	s.echo.POST("/api/chat", s.postChat)
	s.echo.POST("/api/relay", s.postRelay)
	s.echo.GET("/api/tier", s.getTier)
	s.echo.GET("/api/idle", s.getIdle)

	s.echo.GET("/api/exchanges", s.getExchanges)
	s.echo.GET("/api/exchanges/:id", s.getExchange)

	// Tracked wallets
	s.echo.GET("/api/wallets", s.getWallets)
	s.echo.POST("/api/wallets", s.addWallet)
	s.echo.DELETE("/api/wallets/:address", s.removeWallet)

	// The avatar's own wallet connection
	s.echo.GET("/api/wallet", s.getWallet)
	s.echo.POST("/api/wallet/connect", s.connectWallet)
	s.echo.POST("/api/wallet/disconnect", s.disconnectWallet)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Broker() *SSEBroker {
	return s.sse
}

// BroadcastReply lets the queue consumer push replies to viewers.
func (s *Server) BroadcastReply(out *session.Outcome) {
	s.sse.BroadcastReply(out)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "clients": s.sse.Clients()})
}
