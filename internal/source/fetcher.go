// internal/source/fetcher.go
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/registry"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

const (
	DefaultTimeout = 30 * time.Second
	retryDelay     = time.Second
)

// ErrFetchFailed ошибка загрузки списка, прерывает запуск
var ErrFetchFailed = errors.New("fetch failed")

// Stats статистика загрузки одного источника
type Stats struct {
	Raw        int
	Malformed  int // записи, которые не разбираются как токен
	Excluded   int
	WrongChain int
	Candidates int
}

// записи разбираются по одной: одна битая запись не должна прерывать загрузку
type tokensResponse struct {
	Tokens []json.RawMessage `json:"tokens"`
}

// Fetcher загружает списки-кандидаты сторонних источников
type Fetcher struct {
	httpClient *http.Client
	retries    int
	logger     *zap.Logger
}

// NewFetcher создает загрузчик. Если httpClient nil, используется пул соединений cleanhttp.
func NewFetcher(httpClient *http.Client, retries int, logger *zap.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		httpClient: httpClient,
		retries:    retries,
		logger:     logger.Named("source"),
	}
}

// Fetch загружает список источника и применяет фильтры источника:
// адреса из списка исключений и записи с чужим chainId отбрасываются.
// Любая ошибка транспорта или разбора ответа возвращается как ErrFetchFailed;
// запись с полями неверного типа только учитывается в Stats.Malformed.
func (f *Fetcher) Fetch(ctx context.Context, src registry.Source) ([]types.CandidateEntry, Stats, error) {
	raw, err := f.download(ctx, src)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %s: %w", ErrFetchFailed, src.ID, err)
	}

	stats := Stats{Raw: len(raw)}
	candidates := make([]types.CandidateEntry, 0, len(raw))
	for i, msg := range raw {
		var entry types.CandidateEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			stats.Malformed++
			f.logger.Debug("Skipping malformed token entry",
				zap.String("source", src.ID),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		if src.IsExcluded(entry.Address) {
			stats.Excluded++
			continue
		}
		if entry.ChainID != src.ChainID {
			stats.WrongChain++
			continue
		}
		candidates = append(candidates, entry)
	}
	stats.Candidates = len(candidates)

	f.logger.Info("Source list fetched",
		zap.String("source", src.ID),
		zap.Int("raw", stats.Raw),
		zap.Int("malformed", stats.Malformed),
		zap.Int("excluded", stats.Excluded),
		zap.Int("wrong_chain", stats.WrongChain),
		zap.Int("candidates", stats.Candidates))

	return candidates, stats, nil
}

func (f *Fetcher) download(ctx context.Context, src registry.Source) ([]json.RawMessage, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryDelay

	return backoff.Retry(ctx, func() ([]json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			f.logger.Warn("Source request failed", zap.String("url", src.URL), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src.URL)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				f.logger.Warn("Source responded with retryable status", zap.Int("status", resp.StatusCode))
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		// читаем тело целиком: обрезанный ответ не должен использоваться частично
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var payload tokensResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode %s: %w", src.URL, err))
		}
		if payload.Tokens == nil {
			return nil, backoff.Permanent(fmt.Errorf("decode %s: missing tokens array", src.URL))
		}
		return payload.Tokens, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(f.retries+1)))
}
