// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) LLM() config.LLMConfig {
	args := m.Called()
	return args.Get(0).(config.LLMConfig)
}

func (m *MockConfig) Server() config.ServerConfig {
	args := m.Called()
	return args.Get(0).(config.ServerConfig)
}

func (m *MockConfig) Analysis() config.AnalysisConfig {
	args := m.Called()
	return args.Get(0).(config.AnalysisConfig)
}

func (m *MockConfig) SetLLMModel(model string)  { m.Called(model) }
func (m *MockConfig) SetServerAddr(addr string) { m.Called(addr) }

// -- Oracle Mocks --

// MockOracle is a mock implementation of schemas.Oracle.
type MockOracle struct {
	mock.Mock
}

var _ schemas.Oracle = (*MockOracle)(nil)

// Generate mocks the Generate method.
func (m *MockOracle) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// StartChat mocks the StartChat method.
func (m *MockOracle) StartChat(ctx context.Context, cfg schemas.ChatConfig) (schemas.Conversation, error) {
	args := m.Called(ctx, cfg)
	if conv := args.Get(0); conv != nil {
		return conv.(schemas.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// Close mocks the Close method.
func (m *MockOracle) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockConversation is a mock implementation of schemas.Conversation.
type MockConversation struct {
	mock.Mock
}

var _ schemas.Conversation = (*MockConversation)(nil)

// Send mocks the Send method.
func (m *MockConversation) Send(ctx context.Context, msg schemas.ChatMessage) (*schemas.ChatReply, error) {
	args := m.Called(ctx, msg)
	if reply := args.Get(0); reply != nil {
		return reply.(*schemas.ChatReply), args.Error(1)
	}
	return nil, args.Error(1)
}
