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

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CustomResourceDefinition returns the CRD for PlaybookPlan, used by the
// `--crd` CLI flag. The schema emitter that would normally derive a precise
// OpenAPI schema from the Go types is out of scope here (see spec's Purpose
// & Scope); spec and status are accepted as any well-formed object and
// validated by the reconciler instead.
func CustomResourceDefinition() *apiextensionsv1.CustomResourceDefinition {
	preserveUnknownFields := true

	openObject := apiextensionsv1.JSONSchemaProps{
		Type:                   "object",
		XPreserveUnknownFields: &preserveUnknownFields,
	}

	return &apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apiextensions.k8s.io/v1",
			Kind:       "CustomResourceDefinition",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: "playbookplans." + Group,
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: Group,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Plural:   "playbookplans",
				Singular: "playbookplan",
				Kind:     "PlaybookPlan",
				ListKind: "PlaybookPlanList",
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
				{
					Name:    Version,
					Served:  true,
					Storage: true,
					Subresources: &apiextensionsv1.CustomResourceSubresources{
						Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
					},
					AdditionalPrinterColumns: []apiextensionsv1.CustomResourceColumnDefinition{
						{Name: "Hosts", Type: "integer", JSONPath: ".status.eligibleHostsCount"},
						{Name: "Mode", Type: "string", JSONPath: ".spec.mode"},
						{Name: "Schedule", Type: "string", JSONPath: ".spec.schedule"},
						{Name: "Next run", Type: "string", JSONPath: ".status.nextRun"},
						{Name: "Current hash", Type: "string", JSONPath: ".status.currentHash", Priority: 1},
						{Name: "Ready", Type: "string", JSONPath: `.status.conditions[?(@.type=="Ready")].status`},
						{Name: "Running", Type: "string", JSONPath: `.status.conditions[?(@.type=="Running")].status`},
						{Name: "Phase", Type: "string", JSONPath: ".status.phase"},
						{Name: "Age", Type: "date", JSONPath: ".metadata.creationTimestamp"},
					},
					Schema: &apiextensionsv1.CustomResourceValidation{
						OpenAPIV3Schema: &apiextensionsv1.JSONSchemaProps{
							Type: "object",
							Properties: map[string]apiextensionsv1.JSONSchemaProps{
								"spec":   openObject,
								"status": openObject,
							},
						},
					},
				},
			},
		},
	}
}
