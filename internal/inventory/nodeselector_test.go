package inventory

import (
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

func TestNodeMatchesMatchLabels(t *testing.T) {
	node := corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Labels: map[string]string{
				"key-a": "value-a",
				"key-b": "value-b",
				"key-c": "value-c",
			},
		},
	}

	matching := v1beta1.NodeSelectorTerm{MatchLabels: map[string]string{"key-a": "value-a"}}
	nonMatching := v1beta1.NodeSelectorTerm{MatchLabels: map[string]string{"key-z": "value-z"}}

	if !NodeMatches(node, matching) {
		t.Error("expected selector to match node")
	}
	if NodeMatches(node, nonMatching) {
		t.Error("expected selector not to match node")
	}
}

func TestNodeMatchesEmptySelectorMatchesEverything(t *testing.T) {
	node := corev1.Node{}

	if !NodeMatches(node, v1beta1.NodeSelectorTerm{}) {
		t.Error("expected an empty selector to match every node")
	}
}

func TestNodeMatchesMissingNodeLabel(t *testing.T) {
	node := corev1.Node{}
	selector := v1beta1.NodeSelectorTerm{MatchLabels: map[string]string{"key-a": "value-a"}}

	if NodeMatches(node, selector) {
		t.Error("expected selector to fail to match when node has no labels")
	}
}
