// internal/oracle/oracle.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

const (
	DefaultBatchSize   = 200
	DefaultConcurrency = 1
)

var (
	// ErrBatchFailed транспортная ошибка пакетного вызова, прерывает весь запуск
	ErrBatchFailed = errors.New("batch call failed")

	errInvalidFormat = errors.New("invalid address format")
)

// Status результат разрешения адреса
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result on-chain данные по одному адресу. Fact заполнен только при StatusSuccess.
type Result struct {
	Status Status
	Fact   types.CanonicalFact
	Reason string
}

// Resolution результаты по адресам, ключ - адрес в нижнем регистре
type Resolution map[string]Result

// Fact возвращает данные токена, если адрес успешно разрешен
func (r Resolution) Fact(address string) (types.CanonicalFact, bool) {
	res, ok := r[types.AddressKey(address)]
	if !ok || res.Status != StatusSuccess {
		return types.CanonicalFact{}, false
	}
	return res.Fact, true
}

// Failed возвращает количество адресов, которые не удалось разрешить
func (r Resolution) Failed() int {
	n := 0
	for _, res := range r {
		if res.Status == StatusFailure {
			n++
		}
	}
	return n
}

// ContractCaller выполняет read-only eth_call. Реализуется evm.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BatchObserver получает статистику по каждому пакету (метрики)
type BatchObserver interface {
	ObserveBatch(addresses, failed int, duration time.Duration)
}

// Config параметры оракула
type Config struct {
	Multicall3  string
	BatchSize   int
	Concurrency int
	Observer    BatchObserver
}

// Oracle читает symbol/name/decimals контрактов пакетами через Multicall3
type Oracle struct {
	caller      ContractCaller
	multicall   common.Address
	batchSize   int
	concurrency int
	observer    BatchObserver
	logger      *zap.Logger
}

// New создает оракул поверх caller
func New(caller ContractCaller, cfg Config, logger *zap.Logger) (*Oracle, error) {
	if caller == nil {
		return nil, errors.New("oracle: nil contract caller")
	}

	multicall := cfg.Multicall3
	if multicall == "" {
		multicall = DefaultMulticall3Address
	}
	if !evm.IsValidAddress(multicall) {
		return nil, fmt.Errorf("oracle: invalid multicall3 address %q", multicall)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Oracle{
		caller:      caller,
		multicall:   common.HexToAddress(multicall),
		batchSize:   batchSize,
		concurrency: concurrency,
		observer:    cfg.Observer,
		logger:      logger.Named("oracle"),
	}, nil
}

// Resolve разрешает все адреса. Адреса с некорректным форматом помечаются
// как failure без обращения к сети. Ошибка транспорта любого пакета
// возвращается как ErrBatchFailed, частичный результат при этом не отдается.
func (o *Oracle) Resolve(ctx context.Context, addresses []string) (Resolution, error) {
	resolution := make(Resolution, len(addresses))

	valid := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	var invalid []string
	for _, address := range addresses {
		key := types.AddressKey(address)
		if !evm.IsValidAddress(address) {
			invalid = append(invalid, key)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, address)
	}
	for _, key := range invalid {
		if _, ok := seen[key]; ok {
			continue
		}
		resolution[key] = Result{Status: StatusFailure, Reason: errInvalidFormat.Error()}
	}

	batches := chunk(valid, o.batchSize)
	o.logger.Info("Resolving token contracts",
		zap.Int("addresses", len(valid)),
		zap.Int("invalid", len(invalid)),
		zap.Int("batches", len(batches)),
		zap.Int("concurrency", o.concurrency))

	slots := make([][]Result, len(batches))
	if o.concurrency == 1 {
		for i, batch := range batches {
			results, err := o.resolveBatch(ctx, i, len(batches), batch)
			if err != nil {
				return nil, err
			}
			slots[i] = results
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		for i, batch := range batches {
			g.Go(func() error {
				results, err := o.resolveBatch(gCtx, i, len(batches), batch)
				if err != nil {
					return err
				}
				slots[i] = results
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for i, batch := range batches {
		for j, address := range batch {
			resolution[types.AddressKey(address)] = slots[i][j]
		}
	}

	o.logger.Info("Token contracts resolved",
		zap.Int("total", len(resolution)),
		zap.Int("failed", resolution.Failed()))
	return resolution, nil
}

func (o *Oracle) resolveBatch(ctx context.Context, idx, total int, batch []string) ([]Result, error) {
	o.logger.Info(fmt.Sprintf("Processing chunk %d / %d", idx+1, total), zap.Int("size", len(batch)))
	start := time.Now()

	calls := make([]call3, 0, len(batch)*len(tokenReads))
	for _, address := range batch {
		target := common.HexToAddress(address)
		for _, method := range tokenReads {
			calls = append(calls, call3{
				Target:       target,
				AllowFailure: true,
				CallData:     erc20ABI.Methods[method].ID,
			})
		}
	}

	data, err := multicallABI.Pack("aggregate3", calls)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate3: %w", err)
	}

	raw, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &o.multicall, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w (chunk %d/%d): %w", ErrBatchFailed, idx+1, total, err)
	}

	returned, err := unpackAggregate3(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (chunk %d/%d): %w", ErrBatchFailed, idx+1, total, err)
	}
	if len(returned) != len(calls) {
		return nil, fmt.Errorf("%w (chunk %d/%d): %w: expected %d results, got %d",
			ErrBatchFailed, idx+1, total, evm.ErrInvalidResponse, len(calls), len(returned))
	}

	results := make([]Result, len(batch))
	failed := 0
	for i, address := range batch {
		fact, err := decodeFact(returned[i*3 : i*3+3])
		if err != nil {
			failed++
			o.logger.Debug("Token contract read failed",
				zap.String("address", address),
				zap.Error(err))
			results[i] = Result{Status: StatusFailure, Reason: err.Error()}
			continue
		}
		results[i] = Result{Status: StatusSuccess, Fact: fact}
	}

	if o.observer != nil {
		o.observer.ObserveBatch(len(batch), failed, time.Since(start))
	}
	return results, nil
}

func unpackAggregate3(raw []byte) ([]result3, error) {
	out, err := multicallABI.Unpack("aggregate3", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", evm.ErrInvalidResponse, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: unexpected aggregate3 output", evm.ErrInvalidResponse)
	}
	return *abi.ConvertType(out[0], new([]result3)).(*[]result3), nil
}

// decodeFact собирает факт из тройки ответов symbol/name/decimals.
// Ошибка любого из трех чтений делает недействительным весь адрес.
func decodeFact(reads []result3) (types.CanonicalFact, error) {
	var fact types.CanonicalFact
	for i, method := range tokenReads {
		res := reads[i]
		if !res.Success {
			return types.CanonicalFact{}, fmt.Errorf("%s() reverted", method)
		}
		if len(res.ReturnData) == 0 {
			return types.CanonicalFact{}, fmt.Errorf("%s() returned no data", method)
		}

		values, err := erc20ABI.Unpack(method, res.ReturnData)
		if err != nil || len(values) != 1 {
			return types.CanonicalFact{}, fmt.Errorf("%s() returned undecodable data", method)
		}

		switch method {
		case "symbol":
			s, ok := values[0].(string)
			if !ok {
				return types.CanonicalFact{}, fmt.Errorf("%s() returned %T", method, values[0])
			}
			fact.Symbol = s
		case "name":
			s, ok := values[0].(string)
			if !ok {
				return types.CanonicalFact{}, fmt.Errorf("%s() returned %T", method, values[0])
			}
			fact.Name = s
		case "decimals":
			d, ok := values[0].(uint8)
			if !ok {
				return types.CanonicalFact{}, fmt.Errorf("%s() returned %T", method, values[0])
			}
			fact.Decimals = d
		}
	}
	return fact, nil
}

func chunk(items []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
