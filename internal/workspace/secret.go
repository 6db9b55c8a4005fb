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

package workspace

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

// NewSecret builds the (unpatched) workspace secret skeleton for plan,
// owner-ref'd to it and sharing its name and namespace.
func NewSecret(plan v1beta1.PlaybookPlan) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      plan.Name,
			Namespace: plan.Namespace,
			OwnerReferences: []metav1.OwnerReference{
				*metav1.NewControllerRef(&plan, v1beta1.SchemeGroupVersion.WithKind("PlaybookPlan")),
			},
		},
		Type: corev1.SecretTypeOpaque,
	}
}

// ApplyContent merges content into secret's StringData, and — since a key
// moving from the binary Data half to the string half would otherwise leave
// a stale value that the apiserver prefers over StringData — removes any
// matching key from Data so the freshly rendered string value takes
// precedence.
func ApplyContent(secret *corev1.Secret, content map[string]string) {
	if secret.StringData == nil {
		secret.StringData = make(map[string]string, len(content))
	}

	for key, value := range content {
		secret.StringData[key] = value
		delete(secret.Data, key)
	}
}
