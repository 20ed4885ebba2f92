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

// 未配置模型凭证时返回的固定结果，供无 API Key 的界面联调
const (
	mockPlantType      = "Unknown Leaf (Mock Mode)"
	mockDiseaseName    = "Sample Blight (Mock Data)"
	mockDescription    = "This is a simulated analysis because no vision model API key is configured. The leaf appears to have brown spots characteristic of early blight."
	mockRecommendation = "Remove affected leaves and apply a copper-based fungicide. Avoid overhead watering."
)

// MockResult 确定性的 mock 诊断结果
func MockResult() Result {
	return Succeeded(Diagnosis{
		PlantType:       mockPlantType,
		DiseaseDetected: true,
		DiseaseName:     mockDiseaseName,
		Description:     mockDescription,
		Recommendation:  mockRecommendation,
		IsMock:          true,
	})
}
