package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixPermits(t *testing.T) {
	m := Matrix{
		KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
		KindProjects: {ActionRead},
		KindReports:  {},
	}

	assert.True(t, m.Permits(KindTasks, ActionRead))
	assert.True(t, m.Permits(KindTasks, ActionCreate))
	assert.False(t, m.Permits(KindTasks, ActionDelete))

	// Absent kind denies everything.
	assert.False(t, m.Permits(KindClients, ActionRead))

	// Present kind with empty action set denies everything.
	assert.False(t, m.Permits(KindReports, ActionRead))
}

func TestMatrixZeroValueDeniesAll(t *testing.T) {
	var m Matrix
	for _, kind := range AllResourceKinds() {
		for _, action := range AllActions() {
			assert.False(t, m.Permits(kind, action))
		}
	}
}

func TestUnionIsPermissive(t *testing.T) {
	a := Matrix{KindTasks: {ActionRead}}
	b := Matrix{
		KindTasks:    {ActionCreate, ActionUpdate},
		KindProjects: {ActionRead},
	}

	merged := Union(a, b)

	assert.True(t, merged.Permits(KindTasks, ActionRead))
	assert.True(t, merged.Permits(KindTasks, ActionCreate))
	assert.True(t, merged.Permits(KindTasks, ActionUpdate))
	assert.True(t, merged.Permits(KindProjects, ActionRead))
	assert.False(t, merged.Permits(KindTasks, ActionDelete))
}

func TestUnionMonotonicity(t *testing.T) {
	base := Matrix{KindTasks: {ActionRead, ActionUpdate}}
	extra := Matrix{KindClients: {ActionRead}}

	merged := Union(base, extra)

	// Every pair permitted before the union is still permitted after.
	for kind, acts := range base {
		for _, action := range acts {
			assert.True(t, merged.Permits(kind, action),
				"union must never subtract %s on %s", action, kind)
		}
	}
}

func TestMatrixGrantDoesNotMutateReceiver(t *testing.T) {
	m := Matrix{KindTasks: {ActionRead}}
	out := m.Grant(KindTasks, ActionDelete)

	assert.True(t, out.Permits(KindTasks, ActionDelete))
	assert.False(t, m.Permits(KindTasks, ActionDelete))
}

func TestMatrixCovers(t *testing.T) {
	big := Matrix{
		KindTasks:    {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		KindProjects: {ActionRead},
	}
	small := Matrix{KindTasks: {ActionRead, ActionDelete}}

	assert.True(t, big.Covers(small))
	assert.False(t, small.Covers(big))
	assert.True(t, big.Covers(Matrix{}))
}

func TestParseResourceKindAndAction(t *testing.T) {
	kind, err := ParseResourceKind("tasks")
	assert.NoError(t, err)
	assert.Equal(t, KindTasks, kind)

	_, err = ParseResourceKind("spaceships")
	assert.Error(t, err)

	action, err := ParseAction("export")
	assert.NoError(t, err)
	assert.Equal(t, ActionExport, action)

	_, err = ParseAction("teleport")
	assert.Error(t, err)
}
