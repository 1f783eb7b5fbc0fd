package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ivagate/internal/access"
	"ivagate/internal/domain"
	"ivagate/internal/mood"
	"ivagate/internal/session"
	"ivagate/internal/wallet"
)

type chatRequest struct {
	SessionID string   `json:"sessionId"`
	Wallet    string   `json:"wallet"`
	Author    string   `json:"author"`
	Text      string   `json:"text"`
	Balance   *float64 `json:"balance"`
}

func (r chatRequest) message(src domain.Source) domain.Message {
	sessionID := strings.TrimSpace(r.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	msg := domain.NewMessage(sessionID, strings.TrimSpace(r.Text), src)
	msg.Wallet = strings.TrimSpace(r.Wallet)
	msg.Author = r.Author
	msg.Balance = r.Balance
	return msg
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func (s *Server) postChat(c echo.Context) error {
	if s.chat == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("chat is not configured"))
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, http.StatusBadRequest, errors.New("text required"))
	}

	out, err := s.chat.Handle(c.Request().Context(), req.message(domain.SourceWeb))
	if errors.Is(err, session.ErrBusy) {
		return errorJSON(c, http.StatusConflict, err)
	}
	if err != nil {
		return errorJSON(c, http.StatusBadGateway, err)
	}

	s.sse.BroadcastReply(out)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) postRelay(c echo.Context) error {
	if s.publisher == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("relay queue is not configured"))
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, http.StatusBadRequest, errors.New("text required"))
	}

	msg := req.message(domain.SourceStream)
	if err := s.publisher.Publish(c.Request().Context(), msg); err != nil {
		return errorJSON(c, http.StatusBadGateway, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"id": msg.ID, "sessionId": msg.SessionID})
}

type tierView struct {
	Balance float64     `json:"balance"`
	Tier    access.Tier `json:"tier"`
	CanChat bool        `json:"canChat"`
	Mood    mood.Mood   `json:"mood"`
}

func (s *Server) getTier(c echo.Context) error {
	balance, err := s.balanceFor(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	policy := s.classifier.Policy()
	return c.JSON(http.StatusOK, tierView{
		Balance: balance,
		Tier:    policy.Tier(balance),
		CanChat: policy.CanChat(balance),
		Mood:    s.classifier.Ladder().Mood(balance),
	})
}

func (s *Server) getIdle(c echo.Context) error {
	balance, err := s.balanceFor(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	cue := s.classifier.Idle(balance)
	s.sink.Play(cue)
	return c.JSON(http.StatusOK, cue)
}

// balanceFor reads ?balance=, then ?wallet= from the cache, then the
// avatar's own wallet. Unknown balances are 0.
func (s *Server) balanceFor(c echo.Context) (float64, error) {
	if raw := c.QueryParam("balance"); raw != "" {
		return access.ParseBalance(raw)
	}
	if addr := c.QueryParam("wallet"); addr != "" && s.wallets != nil {
		b, _, err := s.wallets.Balance(c.Request().Context(), addr)
		return access.Normalize(b), err
	}
	if s.wallet != nil {
		return access.Normalize(s.wallet.Balance()), nil
	}
	return 0, nil
}

func (s *Server) getExchanges(c echo.Context) error {
	if s.repo == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("storage is not configured"))
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	exchanges, err := s.repo.FindAll(c.Request().Context(), limit, offset)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}
	return c.JSON(http.StatusOK, exchanges)
}

func (s *Server) getExchange(c echo.Context) error {
	if s.repo == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("storage is not configured"))
	}
	ex, err := s.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if ex == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, ex)
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

type walletView struct {
	Address string      `json:"address"`
	Balance float64     `json:"balance"`
	Cached  bool        `json:"cached"`
	Tier    access.Tier `json:"tier"`
}

func (s *Server) walletView(c echo.Context, addr string) walletView {
	b, ok, _ := s.wallets.Balance(c.Request().Context(), addr)
	return walletView{Address: addr, Balance: b, Cached: ok, Tier: s.classifier.Policy().Tier(b)}
}

func (s *Server) getWallets(c echo.Context) error {
	if s.wallets == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("wallet tracking is not configured"))
	}
	addrs, err := s.wallets.Wallets(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	views := make([]walletView, len(addrs))
	for i, a := range addrs {
		views[i] = s.walletView(c, a)
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) addWallet(c echo.Context) error {
	if s.wallets == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("wallet tracking is not configured"))
	}
	ctx := c.Request().Context()

	var req struct {
		Address string `json:"address" form:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	addr := strings.TrimSpace(req.Address)
	if addr == "" {
		return errorJSON(c, http.StatusBadRequest, errors.New("address required"))
	}

	exists, _ := s.wallets.WalletExists(ctx, addr)
	if exists {
		return errorJSON(c, http.StatusConflict, errors.New("already tracking"))
	}
	if err := s.wallets.AddWallet(ctx, addr); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	if s.source != nil {
		if b, err := s.source.Balance(ctx, addr); err == nil {
			s.wallets.SetBalance(ctx, addr, b)
		}
	}
	s.playSpecial(mood.EventWalletConnected)

	return c.JSON(http.StatusCreated, s.walletView(c, addr))
}

func (s *Server) removeWallet(c echo.Context) error {
	if s.wallets == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("wallet tracking is not configured"))
	}
	if err := s.wallets.RemoveWallet(c.Request().Context(), c.Param("address")); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type walletStateView struct {
	wallet.State
	Adapters []string    `json:"adapters"`
	Tier     access.Tier `json:"tier"`
}

func (s *Server) walletState() walletStateView {
	st := s.wallet.Snapshot()
	return walletStateView{
		State:    st,
		Adapters: s.walletAdapters(),
		Tier:     s.classifier.Policy().Tier(st.Balance),
	}
}

func (s *Server) walletAdapters() []string {
	if names := s.wallet.Adapters(); names != nil {
		return names
	}
	return []string{}
}

func (s *Server) getWallet(c echo.Context) error {
	if s.wallet == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("no local wallet"))
	}
	return c.JSON(http.StatusOK, s.walletState())
}

func (s *Server) connectWallet(c echo.Context) error {
	if s.wallet == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("no local wallet"))
	}
	var req struct {
		Adapter string `json:"adapter" form:"adapter"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}

	err := s.wallet.Connect(c.Request().Context(), req.Adapter)
	switch {
	case err == nil:
		s.playSpecial(mood.EventWalletConnected)
		return c.JSON(http.StatusOK, s.walletState())
	case wallet.IsCancelled(err):
		s.playSpecial(mood.EventWalletCancelled)
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error(), "cancelled": true})
	case errors.Is(err, wallet.ErrNoWallets), errors.Is(err, wallet.ErrUnknown):
		return errorJSON(c, http.StatusNotFound, err)
	default:
		return errorJSON(c, http.StatusBadGateway, err)
	}
}

func (s *Server) disconnectWallet(c echo.Context) error {
	if s.wallet == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("no local wallet"))
	}
	s.wallet.Disconnect(c.Request().Context())
	return c.JSON(http.StatusOK, s.walletState())
}

func (s *Server) playSpecial(e mood.Event) {
	if cue, ok := mood.Special(e); ok {
		s.sink.Play(cue)
	}
}

func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	fmt.Fprintf(c.Response(), ": ping\n\n")
	c.Response().Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-keepalive.C:
			fmt.Fprintf(c.Response(), ": ping\n\n")
			c.Response().Flush()
		case ev := <-ch:
			fmt.Fprintf(c.Response(), "event: %s\n", ev.Name)
			for _, line := range strings.Split(ev.Data, "\n") {
				fmt.Fprintf(c.Response(), "data: %s\n", line)
			}
			fmt.Fprintf(c.Response(), "\n")
			c.Response().Flush()
		}
	}
}
