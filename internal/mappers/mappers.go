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

// Package mappers turns Node and Secret watch events into the set of
// PlaybookPlans that might need to be requeued as a result.
package mappers

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

// NodeToPlaybookPlans lists every plan that has any FromClusterNodes
// inventory entry, since a node label change could alter that plan's
// resolved host set. It never inspects the node itself — any node mutation
// is treated as a potential trigger.
func NodeToPlaybookPlans(c client.Client) handler.MapFunc {
	return func(_ client.Object) []reconcile.Request {
		ctx := context.Background()
		var plans v1beta1.PlaybookPlanList
		if err := c.List(ctx, &plans); err != nil {
			return nil
		}

		var requests []reconcile.Request
		for _, plan := range plans.Items {
			if referencesClusterNodes(plan) {
				requests = append(requests, requestFor(plan))
			}
		}
		return requests
	}
}

func referencesClusterNodes(plan v1beta1.PlaybookPlan) bool {
	for _, group := range plan.Spec.Inventory {
		if group.Hosts.FromNodes != nil {
			return true
		}
	}
	return false
}

// SecretToPlaybookPlans lists every plan in the secret's namespace whose
// template references that secret, either as a variable source or as a
// file source.
func SecretToPlaybookPlans(c client.Client) handler.MapFunc {
	return func(obj client.Object) []reconcile.Request {
		secret, ok := obj.(*corev1.Secret)
		if !ok {
			return nil
		}

		ctx := context.Background()
		var plans v1beta1.PlaybookPlanList
		if err := c.List(ctx, &plans, client.InNamespace(secret.Namespace)); err != nil {
			return nil
		}

		var requests []reconcile.Request
		for _, plan := range plans.Items {
			if referencesSecret(plan, secret.Name) {
				requests = append(requests, requestFor(plan))
			}
		}
		return requests
	}
}

func referencesSecret(plan v1beta1.PlaybookPlan, secretName string) bool {
	for _, v := range plan.Spec.Template.Variables {
		if v.SecretRef != nil && v.SecretRef.Name == secretName {
			return true
		}
	}
	for _, f := range plan.Spec.Template.Files {
		if f.SecretRef != nil && f.SecretRef.Name == secretName {
			return true
		}
	}
	return false
}

func requestFor(plan v1beta1.PlaybookPlan) reconcile.Request {
	return reconcile.Request{NamespacedName: client.ObjectKeyFromObject(&plan)}
}
