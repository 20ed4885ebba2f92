// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_EmptyKeyMeansNoClient(t *testing.T) {
	c, err := NewClient(context.Background(), "gemini", ProviderOptions{APIKey: "  "})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewClient_NotRegistered(t *testing.T) {
	_, err := NewClient(context.Background(), "non-existent-vision", ProviderOptions{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestNewClient_Builtins(t *testing.T) {
	c, err := NewClient(context.Background(), "Gemini", ProviderOptions{APIKey: "k"})
	require.NoError(t, err)
	_, ok := c.(*GeminiClient)
	assert.True(t, ok)
	assert.Contains(t, Providers(), "gemini")
	assert.Contains(t, Providers(), "openai")
}

func TestRegisterProvider(t *testing.T) {
	RegisterProvider("stub-provider", func(_ context.Context, opts ProviderOptions) (Client, error) {
		return &stubClient{}, nil
	})
	c, err := NewClient(context.Background(), "stub-provider", ProviderOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "stub", c.Provider())
}
