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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *stubClient) Analyze(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	time.Sleep(s.delay)
	return "reply:" + req.Prompt, nil
}

func (s *stubClient) Name() string     { return "stub-model" }
func (s *stubClient) Provider() string { return "stub" }

func TestNewRateLimiter_Disabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(LimitConfig{}))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	l := NewRateLimiter(LimitConfig{MaxConcurrent: 1})
	require.NotNil(t, l)

	require.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, 1, l.InFlight())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, l.Wait(ctx))

	l.Release()
	assert.Equal(t, 0, l.InFlight())
	l.Release()
	assert.Equal(t, 0, l.InFlight())
}

func TestRateLimitedClient_PassThrough(t *testing.T) {
	inner := &stubClient{}
	c := NewRateLimitedClient(inner, nil)
	out, err := c.Analyze(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "reply:x", out)
	assert.Equal(t, "stub", c.Provider())
	assert.Equal(t, "stub-model", c.Name())
}

func TestRateLimitedClient_ReleasesSlots(t *testing.T) {
	inner := &stubClient{delay: 5 * time.Millisecond}
	limiter := NewRateLimiter(LimitConfig{RequestsPerMinute: 60000, MaxConcurrent: 2})
	c := NewRateLimitedClient(inner, limiter)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Analyze(context.Background(), Request{Prompt: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, inner.calls)
	assert.Equal(t, 0, limiter.InFlight())
}
