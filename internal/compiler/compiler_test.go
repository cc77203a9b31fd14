package compiler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/compiler"
)

func compile(t *testing.T, defaultAgent contracts.AgentID, src string) *contracts.Plan {
	t.Helper()
	c := compiler.New(defaultAgent)
	plan, err := c.Compile(context.Background(), src)
	require.NoError(t, err)
	return plan
}

func TestCompile_PureSequential(t *testing.T) {
	plan := compile(t, "svc", "build THEN test THEN deploy")
	require.Len(t, plan.Steps, 3)
	for _, s := range plan.Steps {
		assert.Equal(t, contracts.AgentID("svc"), s.AgentID)
	}
	assert.Len(t, plan.Steps[1].Dependencies, 1)
	_, ok := plan.Steps[1].Dependencies[plan.Steps[0].ID]
	assert.True(t, ok)
	_, ok = plan.Steps[2].Dependencies[plan.Steps[1].ID]
	assert.True(t, ok)
	assert.Equal(t, 3, plan.Metadata.ParallelBatches)
	assert.Equal(t, 3, plan.Metadata.TotalSteps)
}

func TestCompile_PureParallel(t *testing.T) {
	plan := compile(t, "svc", "lint AND format AND typecheck")
	require.Len(t, plan.Steps, 3)
	for _, s := range plan.Steps {
		assert.Empty(t, s.Dependencies)
	}
	assert.Equal(t, 1, plan.Metadata.ParallelBatches)
}

func TestCompile_MixedWithConditional(t *testing.T) {
	plan := compile(t, "svc", "svc: build THEN test AND lint THEN deploy IF success")
	require.Len(t, plan.Steps, 4)
	build, test, lint, deploy := plan.Steps[0], plan.Steps[1], plan.Steps[2], plan.Steps[3]
	assert.Equal(t, "build", build.Task)
	assert.Contains(t, test.Dependencies, build.ID)
	assert.Contains(t, lint.Dependencies, build.ID)
	require.NotNil(t, deploy.Condition)
	assert.Equal(t, contracts.IfSuccess, deploy.Condition.Operator)
}

func TestCompile_MultiAgent(t *testing.T) {
	plan := compile(t, "svc", "websmith: build frontend THEN crafter: design review AND huntress: security scan")
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, contracts.AgentID("websmith"), plan.Steps[0].AgentID)
	assert.Equal(t, contracts.AgentID("crafter"), plan.Steps[1].AgentID)
	assert.Equal(t, contracts.AgentID("huntress"), plan.Steps[2].AgentID)
	assert.Equal(t, plan.Steps[1].Dependencies, plan.Steps[2].Dependencies)
}

func TestCompile_IfContains(t *testing.T) {
	plan := compile(t, "svc", `svc: analyze logs THEN svc: alert IF_CONTAINS("ERROR")`)
	require.Len(t, plan.Steps, 2)
	alert := plan.Steps[1]
	require.NotNil(t, alert.Condition)
	assert.Equal(t, contracts.IfContains, alert.Condition.Operator)
	assert.Equal(t, "ERROR", alert.Condition.Value)
	assert.Equal(t, plan.Steps[0].ID, alert.Condition.TargetStepID)
}

func TestCompile_EmptyInput(t *testing.T) {
	c := compiler.New("svc")
	_, err := c.Compile(context.Background(), "   ")
	assert.True(t, errors.Is(err, contracts.ErrInvalidSyntax))
}

func TestCompile_LeadingOperator(t *testing.T) {
	c := compiler.New("svc")
	for _, src := range []string{"THEN build", "AND build", "IF build"} {
		_, err := c.Compile(context.Background(), src)
		assert.True(t, errors.Is(err, contracts.ErrInvalidSyntax), src)
	}
}

func TestCompile_AdjacentOperators(t *testing.T) {
	c := compiler.New("svc")
	_, err := c.Compile(context.Background(), "a THEN THEN b")
	assert.True(t, errors.Is(err, contracts.ErrInvalidSyntax))
}

func TestCompile_StrayColonRule(t *testing.T) {
	// prefix has a space -> not an agentId prefix
	plan := compile(t, "svc", "do the thing: carefully")
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, contracts.AgentID("svc"), plan.Steps[0].AgentID)
	assert.Equal(t, "do the thing: carefully", plan.Steps[0].Task)

	// colon past the 30-char boundary -> not an agentId prefix
	longPrefix := "this-prefix-is-most-certainly-over-thirty-chars: task"
	plan2 := compile(t, "svc", longPrefix)
	require.Len(t, plan2.Steps, 1)
	assert.Equal(t, contracts.AgentID("svc"), plan2.Steps[0].AgentID)
}

func TestCompile_DeterministicStructureModuloIDs(t *testing.T) {
	c := compiler.New("svc")
	p1, err := c.Compile(context.Background(), "build THEN test")
	require.NoError(t, err)
	p2, err := c.Compile(context.Background(), "build THEN test")
	require.NoError(t, err)
	assert.Equal(t, len(p1.Steps), len(p2.Steps))
	assert.Equal(t, p1.Metadata.ParallelBatches, p2.Metadata.ParallelBatches)
	for i := range p1.Steps {
		assert.Equal(t, p1.Steps[i].Task, p2.Steps[i].Task)
		assert.Equal(t, p1.Steps[i].AgentID, p2.Steps[i].AgentID)
		assert.Equal(t, len(p1.Steps[i].Dependencies), len(p2.Steps[i].Dependencies))
	}
}
