package store

import (
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetMessageStore implements the StoreManager interface.
func (m *MockStoreManager) GetMessageStore() contract.MessageStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MessageStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockMessageStore is a mock implementation of MessageStore for testing.
type MockMessageStore struct {
	mock.Mock
}

var _ contract.MessageStore = &MockMessageStore{} // Compile-time check

// Import implements the MessageStore interface.
func (m *MockMessageStore) Import(product schema.ProductFilter, observations []schema.Observation) (int, error) {
	args := m.Called(product, observations)
	return args.Int(0), args.Error(1)
}

// Query implements the MessageStore interface.
func (m *MockMessageStore) Query(product schema.ProductFilter, cycles []time.Time) ([]schema.Observation, error) {
	args := m.Called(product, cycles)
	observations, _ := args.Get(0).([]schema.Observation)
	return observations, args.Error(1)
}

// GetStatus implements the MessageStore interface.
func (m *MockMessageStore) GetStatus() (schema.MessageStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.MessageStoreStatus), args.Error(1)
}

// Close implements the MessageStore interface.
func (m *MockMessageStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, seed uint64, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, seed, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordBounds implements the RunStore interface.
func (m *MockRunStore) RecordBounds(runID int64, startHour string, bound schema.ConfidenceBound) error {
	args := m.Called(runID, startHour, bound)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalBuckets, skippedBuckets int) error {
	args := m.Called(runID, endTime, totalBuckets, skippedBuckets)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStoreStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetAllStandardTimes implements the RunStore interface.
func (m *MockRunStore) GetAllStandardTimes() ([]schema.StandardTimeRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.StandardTimeRecord)
	return records, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
