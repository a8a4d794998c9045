package template

import (
	"context"
	"testing"

	"go-docflow/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, tpl Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Template), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id string, tpl Template) error {
	args := m.Called(ctx, id, tpl)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func validTemplate() Template {
	return Template{
		Name: "Expense",
		Stages: []StageDefinition{
			{Order: 1, Name: "Manager", Targets: []TargetDefinition{
				{Kind: TargetKindUser, UserID: "10"},
			}},
			{Order: 2, Name: "Finance", Targets: []TargetDefinition{
				{Kind: TargetKindOrganization, OrganizationID: "org-finance"},
				{Kind: TargetKindOrgManagerAtLevel, OrganizationID: "org-sales", ManagerLevel: 2},
			}},
		},
	}
}

func TestCreateTemplate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("Template")).Return(nil)
	service := NewTemplateService(repo)

	created, err := service.CreateTemplate(context.Background(), validTemplate(), "admin-1")

	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "admin-1", created.CreatedBy)
	repo.AssertExpectations(t)
}

func TestCreateTemplateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing name", func(tpl *Template) { tpl.Name = "" }},
		{"no stages", func(tpl *Template) { tpl.Stages = nil }},
		{"duplicate order", func(tpl *Template) { tpl.Stages[1].Order = 1 }},
		{"gap in orders", func(tpl *Template) { tpl.Stages[1].Order = 3 }},
		{"order below one", func(tpl *Template) { tpl.Stages[0].Order = 0 }},
		{"stage without name", func(tpl *Template) { tpl.Stages[0].Name = "" }},
		{"user target without id", func(tpl *Template) { tpl.Stages[0].Targets[0].UserID = "" }},
		{"org target without org", func(tpl *Template) { tpl.Stages[1].Targets[0].OrganizationID = "" }},
		{"manager target without level", func(tpl *Template) { tpl.Stages[1].Targets[1].ManagerLevel = 0 }},
		{"unknown kind", func(tpl *Template) { tpl.Stages[0].Targets[0].Kind = "TEAM" }},
		{"non-reference template-level target", func(tpl *Template) {
			tpl.ReferenceTargets = []TargetDefinition{{Kind: TargetKindUser, UserID: "30"}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepo)
			service := NewTemplateService(repo)
			tpl := validTemplate()
			tc.mutate(&tpl)

			_, err := service.CreateTemplate(context.Background(), tpl, "admin-1")

			assert.Error(t, err)
			repo.AssertNotCalled(t, "Create")
		})
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil)
	service := NewTemplateService(repo)

	_, err := service.GetTemplate(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateTemplateNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil)
	service := NewTemplateService(repo)

	err := service.UpdateTemplate(context.Background(), "missing", validTemplate())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Update")
}

func TestUpdateTemplate(t *testing.T) {
	id := primitive.NewObjectID()
	existing := validTemplate()
	existing.ID = id

	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, id.Hex()).Return(&existing, nil)
	repo.On("Update", mock.Anything, id.Hex(), mock.AnythingOfType("Template")).Return(nil)
	service := NewTemplateService(repo)

	updated := validTemplate()
	updated.Description = "expanded"

	require.NoError(t, service.UpdateTemplate(context.Background(), id.Hex(), updated))
	repo.AssertExpectations(t)
}

func TestDeleteTemplateNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil)
	service := NewTemplateService(repo)

	err := service.DeleteTemplate(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Delete")
}
