// internal/blockchain/evm/client.go
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Основные константы
const (
	DefaultTimeout = 15 * time.Second
	DefaultRetries = 3
	RetryDelay     = 500 * time.Millisecond
	maxRetryDelay  = 5 * time.Second
)

// Caller минимальный набор методов узла, который нужен для read-only вызовов
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Observer получает информацию о каждом RPC запросе (метрики)
type Observer interface {
	ObserveRPC(method string, duration time.Duration, err error)
}

// Options параметры клиента
type Options struct {
	URLs       []string
	Timeout    time.Duration
	Retries    int
	HTTPClient *http.Client
	Observer   Observer
}

// Client RPC клиент с переключением узлов при ошибке
type Client struct {
	nodes    []*NodeClient
	current  int
	mu       sync.Mutex
	timeout  time.Duration
	retries  int
	observer Observer
	logger   *zap.Logger
}

// NewClient подключается ко всем узлам из списка.
// Узлы, к которым не удалось подключиться, пропускаются.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if len(opts.URLs) == 0 {
		return nil, ErrNoRPCNodes
	}

	nodes := make([]*NodeClient, 0, len(opts.URLs))
	for _, url := range opts.URLs {
		var dialOpts []gethrpc.ClientOption
		if opts.HTTPClient != nil {
			dialOpts = append(dialOpts, gethrpc.WithHTTPClient(opts.HTTPClient))
		}
		rc, err := gethrpc.DialOptions(ctx, url, dialOpts...)
		if err != nil {
			logger.Warn("Failed to initialize node", zap.String("url", url), zap.Error(err))
			continue
		}
		nodes = append(nodes, NewNodeClient(url, ethclient.NewClient(rc)))
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("failed to initialize any nodes: %w", ErrNoRPCNodes)
	}

	return newClient(nodes, opts, logger), nil
}

func newClient(nodes []*NodeClient, opts Options, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		nodes:    nodes,
		timeout:  timeout,
		retries:  retries,
		observer: opts.Observer,
		logger:   logger.Named("evm-rpc"),
	}
}

// nextNode возвращает текущий узел и сдвигает указатель на следующий
func (c *Client) nextNode() *NodeClient {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.nodes[c.current]
	c.current = (c.current + 1) % len(c.nodes)
	return node
}

// ExecuteWithRetry выполняет RPC-запрос с экспоненциальной задержкой
// и переключением узлов при ошибке
func (c *Client) ExecuteWithRetry(ctx context.Context, method string, operation func(context.Context, *NodeClient) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = RetryDelay
	policy.MaxInterval = maxRetryDelay

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		node := c.nextNode()

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		err := operation(reqCtx, node)
		duration := time.Since(start)

		node.UpdateMetrics(err == nil, duration)
		if c.observer != nil {
			c.observer.ObserveRPC(method, duration, err)
		}

		if err == nil {
			return struct{}{}, nil
		}
		var httpErr gethrpc.HTTPError
		switch {
		case errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests:
			err = fmt.Errorf("%w: %v", ErrRateLimit, err)
		}

		wrapped := NewError(err, node.URL, method)
		if !IsRetryableError(err) {
			return struct{}{}, backoff.Permanent(wrapped)
		}

		c.logger.Debug("RPC request failed, trying next node",
			zap.String("url", node.URL),
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return struct{}{}, wrapped
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(c.retries+1)))

	if err != nil {
		c.logger.Warn("RPC request failed",
			zap.String("method", method),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return err
	}
	return nil
}

// CallContract выполняет eth_call на последнем блоке
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var result []byte
	err := c.ExecuteWithRetry(ctx, "eth_call", func(ctx context.Context, node *NodeClient) error {
		var err error
		result, err = node.Caller.CallContract(ctx, msg, blockNumber)
		return err
	})
	return result, err
}

// Nodes возвращает узлы клиента (для отчета по метрикам)
func (c *Client) Nodes() []*NodeClient {
	return c.nodes
}

// Close закрывает соединения со всеми узлами
func (c *Client) Close() {
	for _, node := range c.nodes {
		node.Caller.Close()
	}
}
