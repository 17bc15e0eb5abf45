// internal/blockchain/evm/node.go
package evm

import (
	"sync"
	"time"
)

// NodeClient представляет отдельный RPC узел
type NodeClient struct {
	Caller  Caller
	URL     string
	metrics *metrics
}

// metrics содержит метрики производительности RPC узла
type metrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

// NewNodeClient создает новый экземпляр NodeClient
func NewNodeClient(url string, caller Caller) *NodeClient {
	return &NodeClient{
		Caller:  caller,
		URL:     url,
		metrics: &metrics{},
	}
}

// GetMetrics возвращает текущие метрики узла
func (n *NodeClient) GetMetrics() (uint64, uint64, time.Duration) {
	n.metrics.mutex.RLock()
	defer n.metrics.mutex.RUnlock()

	return n.metrics.successCount, n.metrics.errorCount, n.metrics.latency
}

// UpdateMetrics обновляет метрики узла
func (n *NodeClient) UpdateMetrics(success bool, latency time.Duration) {
	n.metrics.mutex.Lock()
	defer n.metrics.mutex.Unlock()

	if success {
		n.metrics.successCount++
	} else {
		n.metrics.errorCount++
	}

	if n.metrics.latency == 0 {
		n.metrics.latency = latency
		return
	}
	n.metrics.latency = (n.metrics.latency + latency) / 2
}
