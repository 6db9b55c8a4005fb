/*
Copyright 2020 The Crossplane Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1beta1

// Label keys stamped onto every Job created for a PlaybookPlan. The
// reconciler filters jobs for the current pass by LabelPlaybookPlanName
// plus LabelExecutionHash.
const (
	LabelPlaybookPlanName = "playbookplan.name"
	LabelExecutionHash    = "playbookplan.hash"
	LabelHost             = "playbookplan.host"
)
