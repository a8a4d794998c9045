package document

import (
	"context"
	"testing"

	"go-docflow/internal/features/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permTestDocument(t *testing.T) *Document {
	t.Helper()
	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
		template.StageDefinition{Order: 2, Name: "Finance", Targets: []template.TargetDefinition{orgTarget("org-finance")}},
	)
	tpl.ReferenceTargets = []template.TargetDefinition{referenceTarget("30")}
	return Instantiate(tpl, "5", "Trip expenses", "")
}

func TestCanViewMatrix(t *testing.T) {
	doc := permTestDocument(t)
	eval := NewPermissionEvaluator(&stubResolver{orgs: map[string][]string{
		"org-finance": {"40"},
	}})
	ctx := context.Background()

	cases := []struct {
		name    string
		userID  string
		isAdmin bool
		want    bool
	}{
		{"admin", "99", true, true},
		{"author", "5", false, true},
		{"stage target user", "10", false, true},
		{"org member of later stage", "40", false, true},
		{"reference target", "30", false, true},
		{"unrelated user", "99", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eval.CanView(ctx, doc, tc.userID, tc.isAdmin))
		})
	}
}

func TestCanViewFailsClosedOnResolutionError(t *testing.T) {
	doc := permTestDocument(t)
	eval := NewPermissionEvaluator(&stubResolver{err: context.DeadlineExceeded})

	// Author access never depends on the directory.
	assert.True(t, eval.CanView(context.Background(), doc, "5", false))
	assert.False(t, eval.CanView(context.Background(), doc, "40", false))
}

func TestCanEditIsAuthorOnly(t *testing.T) {
	doc := permTestDocument(t)
	eval := NewPermissionEvaluator(&stubResolver{})

	assert.True(t, eval.CanEdit(doc, "5"))
	assert.False(t, eval.CanEdit(doc, "10"))
}

func TestCanApprove(t *testing.T) {
	doc := permTestDocument(t)
	eval := NewPermissionEvaluator(&stubResolver{orgs: map[string][]string{
		"org-finance": {"40"},
	}})
	ctx := context.Background()

	assert.True(t, eval.CanApprove(ctx, doc, "10", 1))
	assert.False(t, eval.CanApprove(ctx, doc, "40", 1), "not a stage 1 target")
	assert.True(t, eval.CanApprove(ctx, doc, "40", 2))
	assert.False(t, eval.CanApprove(ctx, doc, "10", 3), "no such stage")
}

func TestCanApproveExcludesSpentAndReferenceTargets(t *testing.T) {
	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10"), referenceTarget("30")}},
	)
	doc := Instantiate(tpl, "5", "Trip expenses", "")
	eval := NewPermissionEvaluator(&stubResolver{})
	engine := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Submit(doc, "5"))

	assert.False(t, eval.CanApprove(ctx, doc, "30", 1), "reference targets never gate")
	require.True(t, eval.CanApprove(ctx, doc, "10", 1))

	require.NoError(t, engine.Approve(ctx, doc, "10", 1, doc.Stages[0].Targets[0].ID))
	assert.False(t, eval.CanApprove(ctx, doc, "10", 1), "spent target")
}
