package live

import (
	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) ListChains(table string) ([]string, error) {
	result := m.Called(table)
	if result.Get(0) == nil {
		return nil, result.Error(1)
	}
	return result.Get(0).([]string), result.Error(1)
}

func (m *MockRunner) List(table, chain string) ([]string, error) {
	result := m.Called(table, chain)
	if result.Get(0) == nil {
		return nil, result.Error(1)
	}
	return result.Get(0).([]string), result.Error(1)
}

func (m *MockRunner) ClearChain(table, chain string) error {
	return m.Called(table, chain).Error(0)
}

func (m *MockRunner) ChangePolicy(table, chain, target string) error {
	return m.Called(table, chain, target).Error(0)
}

// Append records the rule spec as a single []string argument.
func (m *MockRunner) Append(table, chain string, rulespec ...string) error {
	return m.Called(table, chain, rulespec).Error(0)
}
