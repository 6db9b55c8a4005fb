package playbookplan

import (
	"context"
	"testing"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatalf("cannot add corev1 to scheme: %v", err)
	}
	if err := batchv1.AddToScheme(scheme); err != nil {
		t.Fatalf("cannot add batchv1 to scheme: %v", err)
	}
	if err := v1beta1.AddToScheme(scheme); err != nil {
		t.Fatalf("cannot add v1beta1 to scheme: %v", err)
	}
	return scheme
}

func oneShotPlan() *v1beta1.PlaybookPlan {
	return &v1beta1.PlaybookPlan{
		ObjectMeta: metav1.ObjectMeta{Name: "site", Namespace: "default", Generation: 1, UID: "uid-1"},
		Spec: v1beta1.PlaybookPlanSpec{
			Image: "example.com/ansible-runner:latest",
			Mode:  v1beta1.ModeOneShot,
			Inventory: []v1beta1.InventoryGroup{
				{Name: "ccu", Hosts: v1beta1.HostsSource{FromList: []string{"host-1"}}},
			},
			Template: v1beta1.PlaybookTemplate{Playbook: "- hosts: all\n"},
		},
	}
}

func reconciler(t *testing.T, objs ...client.Object) (*Reconciler, client.Client) {
	t.Helper()
	return reconcilerWithClock(t, clock.RealClock{}, objs...)
}

func reconcilerWithClock(t *testing.T, ck clock.PassiveClock, objs ...client.Object) (*Reconciler, client.Client) {
	t.Helper()
	builder := fake.NewClientBuilder().WithScheme(newScheme(t))
	for _, o := range objs {
		builder = builder.WithObjects(o)
	}
	c := builder.Build()
	return &Reconciler{client: c, log: logging.NewNopLogger(), clock: ck}, c
}

func TestReconcileIsNoOpWhenBeingDeleted(t *testing.T) {
	plan := oneShotPlan()
	now := metav1.Now()
	plan.DeletionTimestamp = &now
	plan.Finalizers = []string{"keep-fake-client-happy"}

	r, _ := reconciler(t, plan)
	result, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RequeueAfter != 0 {
		t.Errorf("expected no requeue for a deleted object, got %+v", result)
	}
}

func TestReconcileFailsPreconditionWithoutGeneration(t *testing.T) {
	plan := oneShotPlan()
	plan.Generation = 0

	r, _ := reconciler(t, plan)
	_, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}})
	if err == nil {
		t.Error("expected a precondition error without a generation set")
	}
}

func TestReconcileCreatesSecretAndJobOnFirstPass(t *testing.T) {
	plan := oneShotPlan()
	r, c := reconciler(t, plan)

	req := ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}}
	if _, err := r.Reconcile(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var secret corev1.Secret
	if err := c.Get(context.Background(), types.NamespacedName{Namespace: "default", Name: "site"}, &secret); err != nil {
		t.Fatalf("expected a workspace secret to be created: %v", err)
	}
	if _, ok := secret.StringData["playbook.yml"]; !ok {
		t.Errorf("expected the workspace secret to contain playbook.yml, got %+v", secret.StringData)
	}

	var jobs batchv1.JobList
	if err := c.List(context.Background(), &jobs, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error listing jobs: %v", err)
	}
	if len(jobs.Items) != 1 {
		t.Fatalf("expected exactly one job to be created, got %d", len(jobs.Items))
	}

	var updated v1beta1.PlaybookPlan
	if err := c.Get(context.Background(), req.NamespacedName, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status.Phase != v1beta1.PhaseApplying {
		t.Errorf("Phase = %q, want %q", updated.Status.Phase, v1beta1.PhaseApplying)
	}
	if updated.Status.EligibleHostsCount != 1 {
		t.Errorf("EligibleHostsCount = %d, want 1", updated.Status.EligibleHostsCount)
	}
	if updated.Status.LastRenderedGeneration != 1 {
		t.Errorf("LastRenderedGeneration = %d, want 1", updated.Status.LastRenderedGeneration)
	}
}

func TestReconcileIsIdempotentAndFinishesOnceJobSucceeds(t *testing.T) {
	plan := oneShotPlan()
	r, c := reconciler(t, plan)
	req := ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}}
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, req); err != nil {
		t.Fatalf("unexpected error on first pass: %v", err)
	}

	var jobs batchv1.JobList
	if err := c.List(ctx, &jobs, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs.Items) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs.Items))
	}

	job := jobs.Items[0]
	job.Status.Conditions = []batchv1.JobCondition{{Type: batchv1.JobConditionType("SuccessCriteriaMet"), Status: corev1.ConditionTrue}}
	if err := c.Status().Update(ctx, &job); err != nil {
		t.Fatalf("unexpected error updating job status: %v", err)
	}

	if _, err := r.Reconcile(ctx, req); err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}

	var jobsAfter batchv1.JobList
	if err := c.List(ctx, &jobsAfter, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobsAfter.Items) != 1 {
		t.Errorf("expected reconcile to stay idempotent, got %d jobs", len(jobsAfter.Items))
	}

	var updated v1beta1.PlaybookPlan
	if err := c.Get(ctx, req.NamespacedName, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status.Phase != v1beta1.PhaseFinished {
		t.Errorf("Phase = %q, want %q", updated.Status.Phase, v1beta1.PhaseFinished)
	}
	if updated.Status.HostsStatus["host-1"].LastAppliedHash != updated.Status.CurrentHash {
		t.Errorf("expected host-1 to roll forward to the current hash, got %+v", updated.Status.HostsStatus)
	}

	ready := false
	for _, cond := range updated.Status.Conditions {
		if cond.Type == v1beta1.TypeReady && cond.Status == corev1.ConditionTrue {
			ready = true
		}
	}
	if !ready {
		t.Errorf("expected a True Ready condition, got %+v", updated.Status.Conditions)
	}
}

// TestReconcileRecurringCycleSchedulesNextFiringOnceJobsFinish covers
// spec.md's testable property #9: once every current-fingerprint job for a
// Recurring plan has finished, Phase becomes Scheduled, NextRun is set to
// the next cron boundary, and the requeue delay equals nextRun - now.
func TestReconcileRecurringCycleSchedulesNextFiringOnceJobsFinish(t *testing.T) {
	plan := oneShotPlan()
	plan.Spec.Mode = v1beta1.ModeRecurring
	hourly := "0 * * * *"
	plan.Spec.Schedule = &hourly

	now, err := time.Parse(time.RFC3339, "2025-08-12T20:00:00Z")
	if err != nil {
		t.Fatalf("cannot parse fixed time: %v", err)
	}
	fakeClock := testingclock.NewFakePassiveClock(now)

	r, c := reconcilerWithClock(t, fakeClock, plan)
	req := ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}}
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, req); err != nil {
		t.Fatalf("unexpected error on first pass: %v", err)
	}

	var jobs batchv1.JobList
	if err := c.List(ctx, &jobs, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs.Items) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs.Items))
	}

	job := jobs.Items[0]
	job.Status.Conditions = []batchv1.JobCondition{{Type: batchv1.JobConditionType("SuccessCriteriaMet"), Status: corev1.ConditionTrue}}
	if err := c.Status().Update(ctx, &job); err != nil {
		t.Fatalf("unexpected error updating job status: %v", err)
	}

	result, err := r.Reconcile(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}

	var jobsAfter batchv1.JobList
	if err := c.List(ctx, &jobsAfter, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobsAfter.Items) != 1 {
		t.Errorf("expected the same firing not to create a second job, got %d", len(jobsAfter.Items))
	}

	var updated v1beta1.PlaybookPlan
	if err := c.Get(ctx, req.NamespacedName, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status.Phase != v1beta1.PhaseScheduled {
		t.Errorf("Phase = %q, want %q", updated.Status.Phase, v1beta1.PhaseScheduled)
	}

	wantNextRun := now.Add(time.Hour)
	if updated.Status.NextRun == nil || !updated.Status.NextRun.Time.Equal(wantNextRun) {
		t.Errorf("NextRun = %v, want %v", updated.Status.NextRun, wantNextRun)
	}

	wantRequeue := wantNextRun.Sub(now)
	if result.RequeueAfter != wantRequeue {
		t.Errorf("RequeueAfter = %v, want %v", result.RequeueAfter, wantRequeue)
	}
}

func TestReconcileDelaysWhenScheduleIsNotYetDue(t *testing.T) {
	plan := oneShotPlan()
	farFuture := "0 0 1 1 *"
	plan.Spec.Schedule = &farFuture

	r, c := reconciler(t, plan)
	req := ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "site"}}

	result, err := r.Reconcile(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RequeueAfter <= 0 {
		t.Errorf("expected a positive requeue delay, got %v", result.RequeueAfter)
	}

	var updated v1beta1.PlaybookPlan
	if err := c.Get(context.Background(), req.NamespacedName, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status.Phase != v1beta1.PhaseScheduled {
		t.Errorf("Phase = %q, want %q", updated.Status.Phase, v1beta1.PhaseScheduled)
	}
	if updated.Status.NextRun == nil {
		t.Error("expected NextRun to be set while delayed")
	}

	var jobs batchv1.JobList
	if err := c.List(context.Background(), &jobs, client.InNamespace("default")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs.Items) != 0 {
		t.Errorf("expected no jobs while delayed, got %d", len(jobs.Items))
	}
}
