package provider

import (
	"context"
	"fmt"
)

// MockProvider is a mock AI provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Translate was called
	LastRequest  *TranslateRequest // Last request received
	Err          error             // Forced error, returned when non-nil
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"你好":   "Hello",
			"谢谢":   "Thanks",
			"再见":   "Goodbye",
			"登录成功": "Login successful",
		},
	}
}

// Translate returns one mock result per submitted item, addressed by the
// item identifiers.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
	m.CallCount++
	m.LastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]TranslationResult, len(req.Items))
	for i, item := range req.Items {
		translation, ok := m.Translations[item.Text]
		if !ok {
			// Bracketed text for unknown translations
			translation = fmt.Sprintf("[%s]", item.Text)
		}
		results[i] = TranslationResult{ID: item.ID, Translation: translation}
	}
	return results, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
	m.Err = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)
