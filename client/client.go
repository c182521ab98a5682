package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/luma/topicsender/protocol"
	"github.com/luma/topicsender/transport"
)

var (
	ErrInvalidArgument = protocol.ErrInvalidArgument
	ErrNotFound        = errors.New("no IPv4 address found")
	ErrDNS             = errors.New("dns lookup failed")
)

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

type Options struct {
	Timeouts transport.Timeouts

	// Resolver defaults to net.DefaultResolver
	Resolver Resolver

	// Dialer is handed to the transport, see transport.Options
	Dialer transport.Dialer

	// Trace will log raw packets
	Trace bool

	Log *zap.Logger
}

// Client sends topics to world servers. Every call opens its own connection,
// a Client only holds configuration and is safe for concurrent use.
type Client struct {
	resolver  Resolver
	transport *transport.TCP
	log       *zap.Logger
}

func New(options Options) *Client {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	resolver := options.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return &Client{
		resolver: resolver,
		transport: transport.NewTCP(transport.Options{
			Timeouts: options.Timeouts,
			Dialer:   options.Dialer,
			Trace:    options.Trace,
			Log:      log.Named("transport"),
		}),
		log: log,
	}
}

// SendTopic resolves host and sends query to the first IPv4 address found.
// host may also be a literal IPv4 address.
func (c *Client) SendTopic(ctx context.Context, host, query string, port uint16) (*protocol.Response, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidArgument)
	}

	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}

	addr, err := c.resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	return c.SendTopicAddr(ctx, addr, query, port)
}

// SendTopicAddr sends query to address on port.
func (c *Client) SendTopicAddr(ctx context.Context, address net.IP, query string, port uint16) (*protocol.Response, error) {
	if address == nil {
		return nil, fmt.Errorf("%w: nil address", ErrInvalidArgument)
	}

	return c.SendTopicEndpoint(ctx, &net.TCPAddr{IP: address, Port: int(port)}, query)
}

// SendTopicEndpoint sends query to endpoint and decodes the reply.
func (c *Client) SendTopicEndpoint(ctx context.Context, endpoint *net.TCPAddr, query string) (*protocol.Response, error) {
	if endpoint == nil || endpoint.IP == nil {
		return nil, fmt.Errorf("%w: nil endpoint", ErrInvalidArgument)
	}

	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}

	packet, err := protocol.EncodeRequest(query)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(endpoint.IP.String(), strconv.Itoa(endpoint.Port))

	c.log.Debug("Sending topic", zap.String("endpoint", addr), zap.String("query", query))

	data, err := c.transport.Exchange(ctx, addr, packet)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.DecodeResponse(data, protocol.ParseHeader(data))
	if err != nil {
		return nil, err
	}

	c.log.Debug("Topic response",
		zap.String("endpoint", addr),
		zap.Stringer("type", resp.Type),
		zap.Int("length", len(data)))

	return resp, nil
}

func (c *Client) resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}

		return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrNotFound, host)
	}

	addrs, err := c.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDNS, host, err)
	}

	for _, addr := range addrs {
		if ip4 := addr.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, host)
}

// Sanitize percent-encodes input so it can be embedded in a query string.
func Sanitize(input string) string {
	return url.QueryEscape(input)
}
