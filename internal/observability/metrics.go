package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for auth outcomes and HTTP
// traffic. All methods are nil-safe so wiring stays optional.
type Metrics struct {
	mu           sync.Mutex
	loginCount   map[string]int64
	lockoutCount int64
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		loginCount:   make(map[string]int64),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordLogin counts an authentication attempt outcome per role.
func (m *Metrics) RecordLogin(role string, success bool) {
	if m == nil {
		return
	}
	key := role + "|" + strconv.FormatBool(success)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCount[key]++
}

// RecordLockout counts an account lockout.
func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockoutCount++
}

// Lockouts returns the total lockouts recorded.
func (m *Metrics) Lockouts() int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockoutCount
}

// Logins returns the count for a role/outcome pair.
func (m *Metrics) Logins(role string, success bool) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCount[role+"|"+strconv.FormatBool(success)]
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}
