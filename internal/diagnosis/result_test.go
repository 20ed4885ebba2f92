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


package diagnosis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockJSON = `{"success":true,"plant_type":"Unknown Leaf (Mock Mode)","disease_detected":true,"disease_name":"Sample Blight (Mock Data)","description":"This is a simulated analysis because no vision model API key is configured. The leaf appears to have brown spots characteristic of early blight.","recommendation":"Remove affected leaves and apply a copper-based fungicide. Avoid overhead watering.","is_mock":true}`

func TestMockResult_Payload(t *testing.T) {
	for i := 0; i < 3; i++ {
		b, err := json.Marshal(MockResult())
		require.NoError(t, err)
		assert.Equal(t, mockJSON, string(b))
	}
}

func TestResult_SuccessJSONCarriesEmptyStrings(t *testing.T) {
	b, err := json.Marshal(Succeeded(Diagnosis{PlantType: "Unknown", DiseaseName: "None"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"plant_type":"Unknown","disease_detected":false,"disease_name":"None","description":"","recommendation":"","is_mock":false}`, string(b))
}

func TestResult_FailureJSONHasOnlyError(t *testing.T) {
	res := Failed(errors.New("gemini API returned status 401: API key not valid"))
	assert.False(t, res.OK())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 2)
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "gemini API returned status 401: API key not valid", m["error"])
}

func TestFailed_NeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Failed(nil).Err)
	assert.NotEmpty(t, Failed(errors.New("")).Err)

	b, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"error":"unknown diagnosis error"`)
}

func TestResult_UnmarshalRoundTrip(t *testing.T) {
	var res Result
	require.NoError(t, json.Unmarshal([]byte(mockJSON), &res))
	assert.Equal(t, MockResult(), res)

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"boom"}`), &res))
	assert.Equal(t, Result{Err: "boom"}, res)

	require.Error(t, json.Unmarshal([]byte(`{"error":"boom"}`), &res))
}
