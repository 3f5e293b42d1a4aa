package tensor

import "sync"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend wraps another Backend and counts every kernel invocation.
// Tests use it to assert which kernels an operation reached, for example
// that gradient work is skipped when no input wants a gradient.
type MockBackend struct {
	Backend

	mu    sync.Mutex
	calls map[string]int
}

// NewMockBackend wraps inner with call counting.
func NewMockBackend(inner Backend) *MockBackend {
	return &MockBackend{Backend: inner, calls: make(map[string]int)}
}

// Calls returns how many times the named kernel ran since the last Reset.
func (m *MockBackend) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Reset clears the call counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

// Name returns the wrapped backend's name marked as mocked.
func (m *MockBackend) Name() string {
	return "Mock(" + m.Backend.Name() + ")"
}

// Add counts the call and delegates.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	m.record("Add")
	return m.Backend.Add(a, b)
}

// Cat counts the call and delegates.
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	m.record("Cat")
	return m.Backend.Cat(tensors, dim)
}

// SumDims counts the call and delegates.
func (m *MockBackend) SumDims(x *RawTensor, dims []int, keepDims bool) *RawTensor {
	m.record("SumDims")
	return m.Backend.SumDims(x, dims, keepDims)
}

// FillWhere counts the call and delegates.
func (m *MockBackend) FillWhere(x, mask, value *RawTensor) {
	m.record("FillWhere")
	m.Backend.FillWhere(x, mask, value)
}

// ZeroWhere counts the call and delegates.
func (m *MockBackend) ZeroWhere(x, mask *RawTensor) {
	m.record("ZeroWhere")
	m.Backend.ZeroWhere(x, mask)
}

// SumWhere counts the call and delegates.
func (m *MockBackend) SumWhere(x, mask *RawTensor) *RawTensor {
	m.record("SumWhere")
	return m.Backend.SumWhere(x, mask)
}

// CopyInto counts the call and delegates.
func (m *MockBackend) CopyInto(dst, src *RawTensor) {
	m.record("CopyInto")
	m.Backend.CopyInto(dst, src)
}

// Zero counts the call and delegates.
func (m *MockBackend) Zero(dst *RawTensor) {
	m.record("Zero")
	m.Backend.Zero(dst)
}
