package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/luma/topicsender/client"
	"github.com/luma/topicsender/protocol"
	"github.com/luma/topicsender/transport"
)

// Sender is the part of client.Client the gateway needs.
type Sender interface {
	SendTopic(ctx context.Context, host, query string, port uint16) (*protocol.Response, error)
}

type Options struct {
	Sender Sender

	// Debug puts gin in debug mode
	Debug bool

	Log *zap.Logger
}

type gateway struct {
	sender Sender
	log    *zap.Logger
}

// NewRouter returns an HTTP router forwarding GET /topic requests to a world
// server.
func NewRouter(options Options) *gin.Engine {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	gin.DisableConsoleColor()
	if !options.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping"},
	}))

	// Logs all panic to error log
	r.Use(ginzap.RecoveryWithZap(log, true))

	g := &gateway{sender: options.Sender, log: log}

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/topic", g.topic)

	return r
}

func (g *gateway) topic(c *gin.Context) {
	host := c.Query("host")
	if host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing host"})
		return
	}

	port, err := strconv.ParseUint(c.Query("port"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid port"})
		return
	}

	query := c.Query("query")
	if c.Query("sanitize") == "true" {
		query = client.Sanitize(query)
	}

	resp, err := g.sender.SendTopic(c.Request.Context(), host, query, uint16(port))
	if err != nil {
		g.log.Warn("Topic failed",
			zap.String("host", host),
			zap.Uint64("port", port),
			zap.Error(err))

		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	body, err := resp.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if fields := c.QueryArray("fields"); len(fields) > 0 {
		if body, err = selectFields(body, resp, fields); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)

// selectFields copies the requested gjson paths out of a JSON string payload
// into a "fields" object. Missing paths become null.
func selectFields(body []byte, resp *protocol.Response, paths []string) ([]byte, error) {
	payload, ok := resp.StringData()
	if !ok || !gjson.Valid(payload) {
		return body, nil
	}

	var err error
	for _, path := range paths {
		value := gjson.Get(payload, path).Raw
		if value == "" {
			value = "null"
		}

		if body, err = sjson.SetRawBytes(body, "fields."+keyEscaper.Replace(path), []byte(value)); err != nil {
			return nil, err
		}
	}

	return body, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, client.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transport.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, transport.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
