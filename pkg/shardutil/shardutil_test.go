package shardutil

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/event"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

func TestIsResourceForShardAcceptsEverythingWithOneShard(t *testing.T) {
	pred := IsResourceForShard(0, 1)
	plan := &v1beta1.PlaybookPlan{ObjectMeta: metav1.ObjectMeta{Name: "site-a"}}

	if !pred.Create(event.CreateEvent{Object: plan}) {
		t.Error("expected every resource to belong to the only shard")
	}
}

func TestIsResourceForShardPartitionsDeterministically(t *testing.T) {
	const totalShards = 4
	plan := &v1beta1.PlaybookPlan{ObjectMeta: metav1.ObjectMeta{Name: "site-a"}}

	owningShard := -1
	for shard := uint32(0); shard < totalShards; shard++ {
		if IsResourceForShard(shard, totalShards).Create(event.CreateEvent{Object: plan}) {
			if owningShard != -1 {
				t.Fatalf("resource matched more than one shard: %d and %d", owningShard, shard)
			}
			owningShard = int(shard)
		}
	}
	if owningShard == -1 {
		t.Fatal("resource matched no shard")
	}

	for shard := uint32(0); shard < totalShards; shard++ {
		got := IsResourceForShard(shard, totalShards).Update(event.UpdateEvent{ObjectNew: plan})
		want := int(shard) == owningShard
		if got != want {
			t.Errorf("shard %d: Update() = %v, want %v", shard, got, want)
		}
	}
}
