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

// Prompt 固定的诊断指令模板
const Prompt = `You are an expert agricultural plant pathologist. Examine the attached photo of a plant or leaf and report:
1. Plant Type: which plant this is.
2. Health Status: whether the plant is healthy or diseased.
3. Disease Name: the disease, if any; otherwise "None".
4. Description: a short description of the visible symptoms.
5. Treatment Recommendation: practical advice a farmer can follow to treat or manage the condition.

Reply with ONE raw JSON object and nothing else. Do not wrap it in markdown code fences and do not add any text before or after it. Use exactly these keys:
{
  "plant_type": "name of the plant",
  "is_healthy": true or false,
  "disease_name": "name of the disease, or None",
  "description": "visible symptoms",
  "recommendation": "treatment advice"
}`
