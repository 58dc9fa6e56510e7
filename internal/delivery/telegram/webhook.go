package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramSubnets are the networks Telegram delivers webhooks from.
var telegramSubnets = []netip.Prefix{
	netip.MustParsePrefix("149.154.160.0/20"),
	netip.MustParsePrefix("91.108.4.0/22"),
}

const shutdownTimeout = 5 * time.Second

// WebhookServer receives updates pushed by Telegram.
type WebhookServer struct {
	srv     *http.Server
	updates chan tgbotapi.Update
	logger  *zap.Logger
}

// NewWebhookServer serves updates on path. Requests from outside
// Telegram's networks are acknowledged and dropped.
func NewWebhookServer(listen, path string, logger *zap.Logger) *WebhookServer {
	w := &WebhookServer{
		updates: make(chan tgbotapi.Update, shardBuffer),
		logger:  logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST(path, w.telegramOnly(), w.receive)

	w.srv = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return w
}

// Updates returns the channel updates are delivered to.
func (w *WebhookServer) Updates() <-chan tgbotapi.Update {
	return w.updates
}

// Run serves until ctx is done.
func (w *WebhookServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("webhook shutdown", zap.Error(err))
		}
	}()

	w.logger.Info("webhook server listening", zap.String("addr", w.srv.Addr))
	err := w.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (w *WebhookServer) telegramOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := clientAddr(c)
		if !fromTelegram(addr) {
			w.logger.Warn("webhook request from foreign address", zap.String("addr", addr))
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (w *WebhookServer) receive(c *gin.Context) {
	var u tgbotapi.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		w.logger.Warn("malformed webhook update", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	select {
	case w.updates <- u:
		c.Status(http.StatusOK)
	case <-c.Request.Context().Done():
		c.Status(http.StatusServiceUnavailable)
	}
}

// clientAddr takes the last X-Forwarded-For hop, the one appended by our proxy.
func clientAddr(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	return c.RemoteIP()
}

func fromTelegram(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range telegramSubnets {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
