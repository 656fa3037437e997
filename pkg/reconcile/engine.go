package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tower-admin/pkg/model"
	"tower-admin/pkg/tower"
)

// TowerClient is the slice of the remote instance client the engine uses.
type TowerClient interface {
	FetchCredentialTypes(ctx context.Context, inst model.Instance) ([]model.RemoteCredentialType, error)
	FetchCredentialTypeByName(ctx context.Context, inst model.Instance, name string) (*model.RemoteCredentialType, error)
	CreateCredentialType(ctx context.Context, inst model.Instance, payload tower.CredentialTypePayload) (*model.RemoteCredentialType, error)
}

// Directory is the read side of the persistence layer the engine needs.
type Directory interface {
	ListInstances() ([]model.Instance, error)
	GetInstanceByName(name string) (model.Instance, bool, error)
	ListCredentialTypes() ([]model.CredentialType, error)
	GetCredentialType(id uint) (model.CredentialType, bool, error)
}

// MatchPolicy controls how local and remote type names are compared.
// Name equality is the only join key the remote API offers, so the
// comparison rule is explicit rather than buried in string equality.
type MatchPolicy struct {
	IgnoreCase bool
	TrimSpace  bool
}

func (p MatchPolicy) normalize(s string) string {
	if p.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if p.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}

// Equal reports whether two type names match under the policy.
func (p MatchPolicy) Equal(a, b string) bool {
	return p.normalize(a) == p.normalize(b)
}

// Engine compares the canonical credential-type catalogue against the
// configured instances and drives repair actions. It holds no state
// between calls; catalogue and instance set are read fresh each time.
type Engine struct {
	Dir    Directory
	Client TowerClient
	Match  MatchPolicy
}

func New(dir Directory, client TowerClient) *Engine {
	return &Engine{Dir: dir, Client: client}
}

// instanceFetch is one instance's type listing, or the error that
// prevented it.
type instanceFetch struct {
	names []string
	err   error
}

// ComputeStatus classifies every canonical type's presence across all
// configured instances. Instances are queried concurrently, one listing
// per instance; a failing instance never blocks or aborts the others.
func (e *Engine) ComputeStatus(ctx context.Context) ([]model.ReconciliationResult, error) {
	types, err := e.Dir.ListCredentialTypes()
	if err != nil {
		return nil, err
	}
	instances, err := e.Dir.ListInstances()
	if err != nil {
		return nil, err
	}

	fetches := e.fetchAll(ctx, instances)

	results := make([]model.ReconciliationResult, 0, len(types))
	for _, ct := range types {
		res := model.ReconciliationResult{
			TypeID:    ct.ID,
			TypeName:  ct.Name,
			PresentIn: []string{},
			MissingIn: []string{},
		}
		for _, inst := range instances {
			f := fetches[inst.Name]
			switch {
			case f.err != nil:
				res.MissingIn = append(res.MissingIn, fmt.Sprintf("%s (error: %v)", inst.Name, f.err))
			case e.contains(f.names, ct.Name):
				res.PresentIn = append(res.PresentIn, inst.Name)
			default:
				res.MissingIn = append(res.MissingIn, inst.Name)
			}
		}
		res.Status = classify(len(res.PresentIn), len(instances))
		results = append(results, res)
	}
	return results, nil
}

// fetchAll lists credential types on every instance in parallel and
// returns the outcomes keyed by instance name. Instance order in the
// input is by name (the store guarantees it), so downstream iteration
// stays deterministic regardless of response ordering.
func (e *Engine) fetchAll(ctx context.Context, instances []model.Instance) map[string]instanceFetch {
	fetches := make(map[string]instanceFetch, len(instances))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, inst := range instances {
		inst := inst
		g.Go(func() error {
			remote, err := e.Client.FetchCredentialTypes(gctx, inst)
			names := make([]string, 0, len(remote))
			for _, r := range remote {
				names = append(names, r.Name)
			}
			mu.Lock()
			fetches[inst.Name] = instanceFetch{names: names, err: err}
			mu.Unlock()
			return nil // per-instance failures are reported inline, never abort the batch
		})
	}
	_ = g.Wait()
	return fetches
}

func (e *Engine) contains(names []string, want string) bool {
	for _, n := range names {
		if e.Match.Equal(n, want) {
			return true
		}
	}
	return false
}

// classify turns a presence count into the coarse health signal.
// Thresholds are fixed design constants, not configurable.
func classify(present, total int) string {
	switch {
	case total == 0:
		return model.StatusNotApplicable
	case present == total:
		return model.StatusGreen
	case present*2 > total:
		return model.StatusOrange
	default:
		return model.StatusRed
	}
}

// DuplicateMissing pushes canonical type typeID to each named instance
// that still lacks it. Each instance is re-checked first so a type that
// appeared since the last status call yields already_exists instead of a
// duplicate create.
func (e *Engine) DuplicateMissing(ctx context.Context, typeID uint, instanceNames []string) ([]model.ActionOutcome, error) {
	if len(instanceNames) == 0 {
		return nil, &ValidationError{Msg: "missing_in_instances must not be empty"}
	}
	ct, ok, err := e.Dir.GetCredentialType(typeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{TypeID: typeID}
	}

	payload := tower.CredentialTypePayload{
		Name:        ct.Name,
		Description: ct.Description,
		Kind:        ct.Kind,
	}

	outcomes := make([]model.ActionOutcome, 0, len(instanceNames))
	for _, name := range instanceNames {
		outcomes = append(outcomes, e.duplicateOne(ctx, name, ct, payload))
	}
	return outcomes, nil
}

func (e *Engine) duplicateOne(ctx context.Context, instanceName string, ct model.CredentialType, payload tower.CredentialTypePayload) model.ActionOutcome {
	out := model.ActionOutcome{Instance: instanceName}

	inst, ok, err := e.Dir.GetInstanceByName(instanceName)
	if err != nil || !ok {
		out.Status = model.OutcomeInstanceNotFound
		return out
	}

	// Re-check against the live listing to avoid acting on stale data.
	remote, err := e.Client.FetchCredentialTypes(ctx, inst)
	if err != nil {
		out.Status = model.OutcomeError
		out.Message = err.Error()
		return out
	}
	for _, r := range remote {
		if e.Match.Equal(r.Name, ct.Name) {
			out.Status = model.OutcomeAlreadyExists
			return out
		}
	}

	if _, err := e.Client.CreateCredentialType(ctx, inst, payload); err != nil {
		out.Status = model.OutcomeError
		out.Message = err.Error()
		return out
	}
	out.Status = model.OutcomeDuplicated
	return out
}

// VerifyByAlternateName checks whether the canonical type exists on each
// named instance under a different name. Read-only; nothing local or
// remote is mutated.
func (e *Engine) VerifyByAlternateName(ctx context.Context, typeID uint, alternateName string, instanceNames []string) ([]model.ActionOutcome, error) {
	if len(instanceNames) == 0 {
		return nil, &ValidationError{Msg: "missing_in_instances must not be empty"}
	}
	if strings.TrimSpace(alternateName) == "" {
		return nil, &ValidationError{Msg: "alternative_name is required"}
	}
	if _, ok, err := e.Dir.GetCredentialType(typeID); err != nil {
		return nil, err
	} else if !ok {
		return nil, &NotFoundError{TypeID: typeID}
	}

	outcomes := make([]model.ActionOutcome, 0, len(instanceNames))
	for _, name := range instanceNames {
		out := model.ActionOutcome{Instance: name}
		inst, ok, err := e.Dir.GetInstanceByName(name)
		if err != nil || !ok {
			out.Status = model.OutcomeInstanceNotFound
			outcomes = append(outcomes, out)
			continue
		}
		remote, err := e.Client.FetchCredentialTypeByName(ctx, inst, alternateName)
		switch {
		case err != nil:
			out.Status = model.OutcomeError
			out.Message = err.Error()
		case remote == nil:
			out.Status = model.OutcomeNotFound
		default:
			out.Status = model.OutcomeFound
			out.Name = remote.Name
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
