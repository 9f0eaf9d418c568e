package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"
)

const allowQuery = "data.econ.access.allow"

// DefaultRegoPolicy lets users read their own records and the system reference series, and delete
// only their own records. System records are never deletable through the API.
const DefaultRegoPolicy = `package econ.access

default allow = false

system_user := "00000000-0000-0000-0000-000000000000"

allow if {
	input.action == "read"
	input.owner_id == input.subject_id
}

allow if {
	input.action == "read"
	input.owner_id == system_user
}

allow if {
	input.action == "delete"
	input.subject_id != ""
	input.owner_id == input.subject_id
	input.owner_id != system_user
}
`

// OPAEvaluator evaluates the access policy with an in-process OPA Rego engine.
type OPAEvaluator struct {
	query  rego.PreparedEvalQuery
	logger *zap.Logger
}

// NewOPAEvaluator compiles policy (DefaultRegoPolicy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, policy string, logger *zap.Logger) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultRegoPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	compiler, err := ast.CompileModules(map[string]string{"access.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	return &OPAEvaluator{query: q, logger: logger}, nil
}

// HealthCheck evaluates a fixed decision to verify the engine is usable.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.Allow(ctx, Input{Action: ActionRead, SubjectID: "health", OwnerID: "health"})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("policy denied owner read")
	}
	return nil
}

// Allow evaluates the policy. Evaluation errors deny.
func (e *OPAEvaluator) Allow(ctx context.Context, in Input) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"action":     in.Action,
		"subject_id": in.SubjectID,
		"owner_id":   in.OwnerID,
	}))
	if err != nil {
		e.logger.Warn("policy evaluation failed", zap.String("action", in.Action), zap.Error(err))
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}
