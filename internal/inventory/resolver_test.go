package inventory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

func newFakeClient(t *testing.T, objs ...runtime.Object) *fake.ClientBuilder {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatalf("cannot build scheme: %v", err)
	}
	return fake.NewClientBuilder().WithScheme(scheme).WithRuntimeObjects(objs...)
}

func TestResolveStaticListIsVerbatim(t *testing.T) {
	c := newFakeClient(t).Build()

	groups := []v1beta1.InventoryGroup{
		{Name: "ccu", Hosts: v1beta1.HostsSource{FromList: []string{"ccu.fritz.box", "ccu.fritz.box"}}},
	}

	got, err := Resolve(context.Background(), c, groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string][]string{"ccu": {"ccu.fritz.box", "ccu.fritz.box"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFromClusterNodesFiltersByLabels(t *testing.T) {
	node1 := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1", Labels: map[string]string{"role": "worker"}}}
	node2 := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-2", Labels: map[string]string{"role": "controlplane"}}}
	node3 := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-3", Labels: map[string]string{"role": "worker"}}}

	c := newFakeClient(t, node1, node2, node3).Build()

	groups := []v1beta1.InventoryGroup{
		{
			Name: "workers",
			Hosts: v1beta1.HostsSource{
				FromNodes: &v1beta1.NodeSelectorTerm{MatchLabels: map[string]string{"role": "worker"}},
			},
		},
	}

	got, err := Resolve(context.Background(), c, groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got["workers"]) != 2 {
		t.Errorf("expected 2 matching nodes, got %v", got["workers"])
	}
}

func TestResolvePrefersStaticListWhenBothSourcesSet(t *testing.T) {
	node := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1", Labels: map[string]string{"role": "worker"}}}
	c := newFakeClient(t, node).Build()

	groups := []v1beta1.InventoryGroup{
		{
			Name: "ambiguous",
			Hosts: v1beta1.HostsSource{
				FromList:  []string{"static-1"},
				FromNodes: &v1beta1.NodeSelectorTerm{MatchLabels: map[string]string{"role": "worker"}},
			},
		},
	}

	got, err := Resolve(context.Background(), c, groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string][]string{"ambiguous": {"static-1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountDeduplicatesAcrossGroups(t *testing.T) {
	resolved := map[string][]string{
		"a": {"host-1", "host-2"},
		"b": {"host-2", "host-3"},
	}

	if got := Count(resolved); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}
