package crdt

import (
	"math"
	"sync"
	"time"
)

// Clock выдает временные метки записей: wall-clock миллисекунды,
// строго возрастающие в пределах процесса даже если системное время
// стоит на месте или идет назад.
type Clock struct {
	now  func() time.Time // источник физического времени
	last int64            // последняя выданная или наблюдаемая метка
	mu   sync.Mutex
}

// NewClock creates a stamp clock reading physical time from now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Tick возвращает новую метку для локальной записи.
// Метка = max(текущее время в мс, последняя метка + 1), но не больше math.MaxInt64.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixMilli()
	if ts <= c.last {
		// Насыщение вместо переполнения в отрицательные метки
		if c.last == math.MaxInt64 {
			return c.last
		}
		ts = c.last + 1
	}
	c.last = ts

	return ts
}

// Update учитывает метку записи, полученной с сервера, чтобы следующая
// локальная запись гарантированно оказалась новее.
func (c *Clock) Update(remoteTimestamp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remoteTimestamp > c.last {
		c.last = remoteTimestamp
	}
}

// GetTimestamp возвращает последнюю метку без изменения часов.
func (c *Clock) GetTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}
