package authz

import (
	"context"
	"errors"

	"github.com/open-policy-agent/opa/rego"

	"mercato/internal/domain"
)

const defaultQuery = "data.mercato.authz.allow"

// rolePolicy is the complete role-gate policy. It is a predicate over the
// already-validated role claim; token verification happens upstream and is
// never repeated here.
const rolePolicy = `package mercato.authz

default allow = false

allow {
	input.role == input.required_role
}
`

// Engine evaluates the role-gate policy. The query is prepared once at
// startup and safe for concurrent evaluation.
type Engine struct {
	query rego.PreparedEvalQuery
}

func NewEngine(ctx context.Context) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Module("role_gate.rego", rolePolicy),
		rego.StrictBuiltinErrors(true),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

type gateInput struct {
	Role         string `json:"role"`
	RequiredRole string `json:"required_role"`
}

func (e *Engine) Allow(ctx context.Context, role, required domain.Role) (bool, error) {
	if e == nil {
		return false, errors.New("authz engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(gateInput{
		Role:         string(role),
		RequiredRole: string(required),
	}))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, errors.New("empty policy result")
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, errors.New("non-boolean policy result")
	}
	return allowed, nil
}
