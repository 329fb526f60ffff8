package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event is the event every built shader is emitted as.
const Event = "shader:built"

// DefaultTimeout bounds connecting when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// DefaultNamespace is the namespace used when Options.Namespace is empty.
const DefaultNamespace = "/"

// Payload is the body of an Event.
type Payload struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	Text     string `json:"text"`
}

// Options configures a Publisher.
type Options struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// client is the part of a socket.io connection the publisher uses.
type client interface {
	Connected() bool
	Emit(event string, payload map[string]any)
	Close()
}

// Publisher emits built shaders. It is safe for concurrent use.
type Publisher struct {
	opts Options
	dial func(ctx context.Context, opts Options) (client, error)

	mu     sync.Mutex
	client client
}

// New returns a publisher for opts. Nothing is dialed until the first
// Publish.
func New(opts Options) (*Publisher, error) {
	if err := ValidateURL(opts.URL); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	return &Publisher{opts: opts, dial: dialSocket}, nil
}

// Publish emits p, connecting first when there is no live connection.
func (p *Publisher) Publish(ctx context.Context, payload Payload) error {
	logger := ctxlog.FromContext(ctx).With("url", p.opts.URL, "shader", payload.Name)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil || !p.client.Connected() {
		if p.client != nil {
			logger.Info("Publish connection dropped, reconnecting.")
			p.client.Close()
			p.client = nil
		}
		dialCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
		c, err := p.dial(dialCtx, p.opts)
		if err != nil {
			return fmt.Errorf("failed to publish shader '%s': %w", payload.Name, err)
		}
		p.client = c
	}

	p.client.Emit(Event, map[string]any{
		"name":     payload.Name,
		"template": payload.Template,
		"text":     payload.Text,
	})
	logger.Debug("Shader published.", "event", Event, "bytes", len(payload.Text))
	return nil
}

// Close drops the connection, if any.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

// ValidateURL fails unless raw is an absolute URL a publisher can dial.
func ValidateURL(raw string) error {
	_, err := parseURL(raw)
	return err
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("publish URL '%s' needs a scheme and a host", raw)
	}
	return u, nil
}

type socketClient struct{ io *socket.Socket }

func (c *socketClient) Connected() bool { return c.io.Connected() }

func (c *socketClient) Emit(event string, payload map[string]any) { c.io.Emit(event, payload) }

func (c *socketClient) Close() { c.io.Disconnect() }

// dialSocket connects over the websocket transport and waits for the
// connect event until ctx is done.
func dialSocket(ctx context.Context, opts Options) (client, error) {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL, "namespace", opts.Namespace)
	parsed, err := parseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsed.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Publish connection established.", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Connecting publisher.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketClient{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("gave up waiting for socket.io connection: %w", ctx.Err())
	}
}
