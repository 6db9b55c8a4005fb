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

// Package playbookplan reconciles PlaybookPlan custom resources: it
// resolves inventory, renders a workspace, fingerprints the desired
// execution, evaluates the schedule, dispatches per-host Jobs, and folds
// their state back into status.
package playbookplan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/source"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
	"github.com/cloudbending/ansible-operator/internal/fingerprint"
	"github.com/cloudbending/ansible-operator/internal/inventory"
	"github.com/cloudbending/ansible-operator/internal/jobs"
	"github.com/cloudbending/ansible-operator/internal/mappers"
	"github.com/cloudbending/ansible-operator/internal/schedule"
	"github.com/cloudbending/ansible-operator/internal/status"
	"github.com/cloudbending/ansible-operator/internal/workspace"
	"github.com/cloudbending/ansible-operator/pkg/shardutil"
)

const (
	errGetPlaybookPlan    = "cannot get PlaybookPlan"
	errPreconditionFailed = "precondition failed"
	errResolveInventory   = "cannot resolve inventory"
	errRenderWorkspace    = "cannot render workspace"
	errApplyWorkspace     = "cannot apply workspace secret"
	errGetSecret          = "cannot get secret"
	errEvaluateSchedule   = "cannot evaluate schedule"
	errLoadTimeZone       = "cannot load time zone"
	errBuildJob           = "cannot build job"
	errCreateJob          = "cannot create job"
	errListJobs           = "cannot list jobs"
	errUpdateStatus       = "cannot update PlaybookPlan status"

	// errorRequeueAfter is the fixed backoff spec.md §5 specifies for any
	// reconcile that fails.
	errorRequeueAfter = 15 * time.Second

	// defaultRequeueAfter is used whenever neither a Delayed schedule nor a
	// Recurring plan's next firing determines the interval.
	defaultRequeueAfter = time.Hour

	// acceptanceWindow is the window evaluateSchedule (spec.md §4.10 step 6)
	// accepts a firing as due "now" in.
	acceptanceWindow = 15 * time.Second

	// recurringLookback is the lookback used to forecast a Recurring plan's
	// next firing once its current jobs have all finished (step 10). It is
	// negative: ForecastNextRun searches from now minus this value, so a
	// negative lookback pushes the search point 5s into the future and
	// guarantees the firing that just ran is never returned again, even
	// when this step runs within the acceptance window of that firing.
	recurringLookback = -5 * time.Second
)

// Options configures Setup.
type Options struct {
	Logger logging.Logger

	// TotalShards, when greater than zero, enables sharding: only
	// PlaybookPlans whose name hashes to TargetShard are reconciled by this
	// instance.
	TotalShards uint32
	TargetShard uint32

	// MaxConcurrentReconciles caps how many PlaybookPlans this instance
	// reconciles at once. Defaults to 1 when unset.
	MaxConcurrentReconciles int
}

// Reconciler reconciles a single PlaybookPlan.
type Reconciler struct {
	client client.Client
	log    logging.Logger

	// clock supplies "now" for schedule evaluation. Defaults to the real
	// clock in Setup; tests substitute a fake clock so schedule-boundary
	// behavior is exercised deterministically.
	clock clock.PassiveClock
}

// Setup adds a controller that reconciles PlaybookPlan resources.
func Setup(mgr ctrl.Manager, o Options) error {
	r := &Reconciler{
		client: mgr.GetClient(),
		log:    o.Logger,
		clock:  clock.RealClock{},
	}

	maxConcurrent := o.MaxConcurrentReconciles
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	bldr := ctrl.NewControllerManagedBy(mgr).
		Named("playbookplan").
		WithOptions(controller.Options{MaxConcurrentReconciles: maxConcurrent}).
		For(&v1beta1.PlaybookPlan{}).
		Owns(&batchv1.Job{}).
		Watches(&source.Kind{Type: &corev1.Node{}}, handler.EnqueueRequestsFromMapFunc(mappers.NodeToPlaybookPlans(mgr.GetClient()))).
		Watches(&source.Kind{Type: &corev1.Secret{}}, handler.EnqueueRequestsFromMapFunc(mappers.SecretToPlaybookPlans(mgr.GetClient())))

	if o.TotalShards > 0 {
		bldr = bldr.WithEventFilter(shardutil.IsResourceForShard(o.TargetShard, o.TotalShards))
	}

	return bldr.Complete(r)
}

// Reconcile implements the state machine in spec.md §4.10.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := r.log.WithValues("request", req)

	plan := &v1beta1.PlaybookPlan{}
	if err := r.client.Get(ctx, req.NamespacedName, plan); err != nil {
		if kerrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return errResult(errors.Wrap(err, errGetPlaybookPlan))
	}

	// 1. Deletion: await further change.
	if plan.GetDeletionTimestamp() != nil {
		return ctrl.Result{}, nil
	}

	// 2. Precondition.
	if plan.Namespace == "" || plan.Name == "" || plan.Generation == 0 {
		return errResult(errors.New(errPreconditionFailed))
	}

	planStatus := plan.Status

	// 3. Resolve inventories.
	resolved, err := inventory.Resolve(ctx, r.client, plan.Spec.Inventory)
	if err != nil {
		return errResult(errors.Wrap(err, errResolveInventory))
	}
	planStatus.EligibleHosts = resolved
	planStatus.EligibleHostsCount = inventory.Count(resolved)

	// 4. Render workspace if absent or outdated.
	render := workspace.IsOutdated(plan.Generation, planStatus.LastRenderedGeneration)
	if !render {
		var existing corev1.Secret
		switch getErr := r.client.Get(ctx, types.NamespacedName{Namespace: plan.Namespace, Name: plan.Name}, &existing); {
		case kerrors.IsNotFound(getErr):
			render = true
		case getErr != nil:
			return errResult(errors.Wrap(getErr, errGetSecret))
		}
	}
	if render {
		if err := r.renderWorkspace(ctx, *plan, resolved); err != nil {
			return errResult(errors.Wrap(err, errRenderWorkspace))
		}
		planStatus.LastRenderedGeneration = plan.Generation
	}

	// 5. Compute the current execution fingerprint.
	secrets, err := r.fetchReferencedSecrets(ctx, plan.Namespace, plan.Spec.Template)
	if err != nil {
		return errResult(errors.Wrap(err, errGetSecret))
	}
	currentHash := fingerprint.Calculate(plan.Spec.Template.Playbook, secrets)
	planStatus.CurrentHash = currentHash.String()

	// 6. Evaluate the schedule.
	now, err := r.currentTime(plan.Spec.TimeZone)
	if err != nil {
		return errResult(errors.Wrap(err, errLoadTimeZone))
	}
	timing, err := schedule.Evaluate(plan.Spec.Schedule, now, acceptanceWindow)
	if err != nil {
		return errResult(errors.Wrap(err, errEvaluateSchedule))
	}

	requeueAfter := defaultRequeueAfter

	// 7. Branch on timing.
	if !timing.Now {
		planStatus.Phase = v1beta1.PhaseScheduled
		at := v1beta1.NewRFC3339Time(timing.At)
		planStatus.NextRun = at
		plan.Status = planStatus
		if err := r.client.Status().Update(ctx, plan); err != nil {
			return errResult(errors.Wrap(err, errUpdateStatus))
		}
		return ctrl.Result{RequeueAfter: timing.At.Sub(now)}, nil
	}

	outdatedHosts := fingerprint.Outdated(planStatus, currentHash)

	dispatch := outdatedHosts
	if plan.Spec.Mode == v1beta1.ModeRecurring {
		dispatch = allHosts(plan.Spec.Inventory, resolved)
	}

	if len(dispatch) == 0 {
		planStatus.Phase = v1beta1.PhaseFinished
	} else {
		firstCreation := false
		var start *time.Time
		if plan.Spec.Mode == v1beta1.ModeRecurring {
			start = &timing.At
		}

		for _, host := range dispatch {
			job, err := jobs.BuildForHost(*plan, host, currentHash, start)
			if err != nil {
				return errResult(errors.Wrap(err, errBuildJob))
			}

			existing := &batchv1.Job{}
			getErr := r.client.Get(ctx, types.NamespacedName{Namespace: job.Namespace, Name: job.Name}, existing)
			if getErr == nil {
				continue
			}
			if !kerrors.IsNotFound(getErr) {
				return errResult(errors.Wrap(getErr, errCreateJob))
			}

			log.Debug("Creating job", "name", job.Name, "host", host)
			if err := r.client.Create(ctx, job); err != nil && !kerrors.IsAlreadyExists(err) {
				return errResult(errors.Wrap(err, errCreateJob))
			}
			firstCreation = true
		}

		if firstCreation {
			planStatus.Phase = v1beta1.PhaseApplying
		}
	}

	// 8. List owned jobs for the current fingerprint.
	var jobList batchv1.JobList
	if err := r.client.List(ctx, &jobList, client.InNamespace(plan.Namespace), client.MatchingLabels{
		v1beta1.LabelPlaybookPlanName: plan.Name,
		v1beta1.LabelExecutionHash:    currentHash.String(),
	}); err != nil {
		return errResult(errors.Wrap(err, errListJobs))
	}

	// 9. Fold into conditions and hostsStatus.
	tally, outcomes := status.Evaluate(jobList.Items)
	status.ApplyOutcomes(&planStatus, currentHash, outcomes)
	status.SetConditions(&planStatus, tally)

	// 10. Recurring: once every listed job has finished, go back to sleep
	// until the next firing.
	if plan.Spec.Mode == v1beta1.ModeRecurring && tally.Total > 0 && tally.Running == 0 {
		planStatus.Phase = v1beta1.PhaseScheduled
		next, err := schedule.ForecastNextRun(*plan.Spec.Schedule, now, recurringLookback)
		if err != nil {
			return errResult(errors.Wrap(err, errEvaluateSchedule))
		}
		at := v1beta1.NewRFC3339Time(next)
		planStatus.NextRun = at
		requeueAfter = next.Sub(now)
	}

	// 11. OneShot: finished once no outdated hosts remain.
	if plan.Spec.Mode == v1beta1.ModeOneShot {
		remaining := fingerprint.Outdated(planStatus, currentHash)
		if len(remaining) == 0 {
			planStatus.Phase = v1beta1.PhaseFinished
			planStatus.NextRun = nil
		}
	}

	// 12. Persist status once.
	plan.Status = planStatus
	if err := r.client.Status().Update(ctx, plan); err != nil {
		return errResult(errors.Wrap(err, errUpdateStatus))
	}

	return ctrl.Result{RequeueAfter: requeueAfter}, nil
}

func (r *Reconciler) renderWorkspace(ctx context.Context, plan v1beta1.PlaybookPlan, resolved map[string][]string) error {
	content, err := workspace.Render(plan.Spec, resolved)
	if err != nil {
		return err
	}

	secret := workspace.NewSecret(plan)
	_, err = controllerutil.CreateOrUpdate(ctx, r.client, secret, func() error {
		workspace.ApplyContent(secret, content)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errApplyWorkspace)
	}
	return nil
}

// fetchReferencedSecrets loads, in template order, the Data of every secret
// referenced by a variable or file source, deduplicating repeated
// references so each secret's content is folded into the fingerprint once.
func (r *Reconciler) fetchReferencedSecrets(ctx context.Context, namespace string, tmpl v1beta1.PlaybookTemplate) ([]map[string][]byte, error) {
	seen := map[string]bool{}
	var secrets []map[string][]byte

	fetch := func(name string) error {
		if seen[name] {
			return nil
		}
		seen[name] = true

		var secret corev1.Secret
		if err := r.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &secret); err != nil {
			return err
		}
		secrets = append(secrets, secret.Data)
		return nil
	}

	for _, v := range tmpl.Variables {
		if v.SecretRef != nil {
			if err := fetch(v.SecretRef.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range tmpl.Files {
		if f.SecretRef != nil {
			if err := fetch(f.SecretRef.Name); err != nil {
				return nil, err
			}
		}
	}

	return secrets, nil
}

// allHosts flattens resolved in inventory spec order, so recurring firings
// dispatch (and name) their jobs deterministically.
func allHosts(groups []v1beta1.InventoryGroup, resolved map[string][]string) []string {
	var hosts []string
	for _, group := range groups {
		hosts = append(hosts, resolved[group.Name]...)
	}
	return hosts
}

func (r *Reconciler) currentTime(zone string) (time.Time, error) {
	now := r.clock.Now()
	if zone == "" {
		return now.UTC(), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	return now.In(loc), nil
}

func errResult(err error) (ctrl.Result, error) {
	return ctrl.Result{RequeueAfter: errorRequeueAfter}, err
}
