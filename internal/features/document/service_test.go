package document

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-docflow/internal/features/template"
	"go-docflow/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTemplateRepo struct {
	mock.Mock
}

func (m *mockTemplateRepo) Create(ctx context.Context, tpl template.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id string) (*template.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*template.Template), args.Error(1)
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]template.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]template.Template), args.Error(1)
}

func (m *mockTemplateRepo) Update(ctx context.Context, id string, tpl template.Template) error {
	args := m.Called(ctx, id, tpl)
	return args.Error(0)
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memDocRepo emulates the versioned Save contract in memory, handing out
// deep copies so callers cannot mutate the stored graph in place.
type memDocRepo struct {
	mu   sync.Mutex
	docs map[string]*Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: map[string]*Document{}}
}

func cloneDocument(doc *Document) *Document {
	out := *doc
	out.Stages = make([]Stage, len(doc.Stages))
	for i, stage := range doc.Stages {
		out.Stages[i] = stage
		out.Stages[i].Targets = append([]Target(nil), stage.Targets...)
	}
	out.ReferenceTargets = append([]Target(nil), doc.ReferenceTargets...)
	return &out
}

func (m *memDocRepo) Insert(ctx context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (m *memDocRepo) FindByID(ctx context.Context, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return cloneDocument(doc), nil
}

func (m *memDocRepo) Save(ctx context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return apperrors.ErrConflict
	}
	doc.Version++
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (m *memDocRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memDocRepo) ListByAuthor(ctx context.Context, authorID string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, doc := range m.docs {
		if doc.AuthorID == authorID {
			out = append(out, *cloneDocument(doc))
		}
	}
	return out, nil
}

func (m *memDocRepo) ListByStatus(ctx context.Context, status Status) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, doc := range m.docs {
		if doc.Status == status {
			out = append(out, *cloneDocument(doc))
		}
	}
	return out, nil
}

func (m *memDocRepo) EnsureIndexes(ctx context.Context) error { return nil }

type memActivityRepo struct {
	mu         sync.Mutex
	activities []Activity
	failInsert bool
}

func (m *memActivityRepo) Insert(ctx context.Context, activity Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return errors.New("insert failed")
	}
	m.activities = append(m.activities, activity)
	return nil
}

func (m *memActivityRepo) ListByDocument(ctx context.Context, docID string) ([]Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Activity
	for _, a := range m.activities {
		if a.DocumentID == docID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivityRepo) DeleteByDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.activities[:0]
	for _, a := range m.activities {
		if a.DocumentID != docID {
			kept = append(kept, a)
		}
	}
	m.activities = kept
	return nil
}

type serviceFixture struct {
	service      DocumentService
	docRepo      *memDocRepo
	activityRepo *memActivityRepo
	templateRepo *mockTemplateRepo
}

func newServiceFixture(resolver Resolver) *serviceFixture {
	docRepo := newMemDocRepo()
	activityRepo := &memActivityRepo{}
	templateRepo := new(mockTemplateRepo)
	logger := zap.NewNop()

	service := NewDocumentService(
		docRepo,
		activityRepo,
		templateRepo,
		NewEngine(resolver),
		NewPermissionEvaluator(resolver),
		NewActivityRecorder(activityRepo, logger),
		logger,
	)
	return &serviceFixture{
		service:      service,
		docRepo:      docRepo,
		activityRepo: activityRepo,
		templateRepo: templateRepo,
	}
}

func TestCreateDocumentUnknownTemplate(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	f.templateRepo.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	_, err := f.service.CreateDocument(context.Background(), "missing", "5", "Trip expenses", "")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.templateRepo.AssertExpectations(t)
}

func TestDocumentLifecycleThroughService(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
		template.StageDefinition{Order: 2, Name: "Finance", Targets: []template.TargetDefinition{userTarget("20")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "lunch receipts")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, doc.Status)

	doc, err = f.service.SubmitDocument(ctx, doc.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, doc.Status)
	assert.Equal(t, int64(1), doc.Version)

	doc, err = f.service.ApproveDocument(ctx, doc.ID, "10", 1, doc.Stages[0].Targets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.CurrentStage)

	doc, err = f.service.ApproveDocument(ctx, doc.ID, "20", 2, doc.Stages[1].Targets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, doc.Status)

	activities, err := f.service.ListActivities(ctx, doc.ID, "5", false)
	require.NoError(t, err)
	require.Len(t, activities, 4)
	assert.Equal(t, ActivityCreate, activities[0].Type)
	assert.Equal(t, ActivitySubmit, activities[1].Type)
	assert.Equal(t, ActivityApprove, activities[2].Type)
	assert.Equal(t, ActivityApprove, activities[3].Type)
}

func TestRejectRecordsReason(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)
	doc, err = f.service.SubmitDocument(ctx, doc.ID, "5")
	require.NoError(t, err)

	doc, err = f.service.RejectDocument(ctx, doc.ID, "10", 1, doc.Stages[0].Targets[0].ID, "missing receipts")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, doc.Status)

	activities, err := f.service.ListActivities(ctx, doc.ID, "10", false)
	require.NoError(t, err)
	last := activities[len(activities)-1]
	assert.Equal(t, ActivityReject, last.Type)
	assert.Equal(t, "missing receipts", last.Reason)
}

func TestFailedActivityInsertDoesNotFailTransition(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	f.activityRepo.failInsert = true
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)

	doc, err = f.service.SubmitDocument(ctx, doc.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, doc.Status)
}

func TestGetDocumentForbiddenForUnrelatedUser(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)

	_, err = f.service.GetDocument(ctx, doc.ID, "99", false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := f.service.GetDocument(ctx, doc.ID, "99", true)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestUpdateDocumentDraftOnly(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)

	doc, err = f.service.UpdateDocument(ctx, doc.ID, "5", "Trip expenses v2", "updated")
	require.NoError(t, err)
	assert.Equal(t, "Trip expenses v2", doc.Title)

	_, err = f.service.UpdateDocument(ctx, doc.ID, "10", "hijack", "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.service.SubmitDocument(ctx, doc.ID, "5")
	require.NoError(t, err)
	_, err = f.service.UpdateDocument(ctx, doc.ID, "5", "too late", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDeleteDocumentCascadesActivities(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)

	err = f.service.DeleteDocument(ctx, doc.ID, "99", false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.service.DeleteDocument(ctx, doc.ID, "5", false))

	_, err = f.service.GetDocument(ctx, doc.ID, "5", false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	remaining, err := f.activityRepo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestListMineAndInbox(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	draft, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Draft only", "")
	require.NoError(t, err)

	open, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Awaiting manager", "")
	require.NoError(t, err)
	_, err = f.service.SubmitDocument(ctx, open.ID, "5")
	require.NoError(t, err)

	mine, err := f.service.ListMine(ctx, "5")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	inbox, err := f.service.ListInbox(ctx, "10")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, open.ID, inbox[0].ID)

	inbox, err = f.service.ListInbox(ctx, "99")
	require.NoError(t, err)
	assert.Empty(t, inbox)

	stored, err := f.docRepo.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status, "unsubmitted documents never enter an inbox")
}

// Concurrent duplicate approvals of the same target: exactly one wins, the
// other observes AlreadyApproved. The per-document lock serializes the two
// load-mutate-save cycles.
func TestConcurrentDuplicateApproval(t *testing.T) {
	f := newServiceFixture(&stubResolver{})
	ctx := context.Background()

	tpl := makeTemplate(
		template.StageDefinition{Order: 1, Name: "Manager", Targets: []template.TargetDefinition{userTarget("10")}},
		template.StageDefinition{Order: 2, Name: "Finance", Targets: []template.TargetDefinition{userTarget("20")}},
	)
	f.templateRepo.On("GetByID", mock.Anything, tpl.ID.Hex()).Return(tpl, nil)

	doc, err := f.service.CreateDocument(ctx, tpl.ID.Hex(), "5", "Trip expenses", "")
	require.NoError(t, err)
	doc, err = f.service.SubmitDocument(ctx, doc.ID, "5")
	require.NoError(t, err)

	targetID := doc.Stages[0].Targets[0].ID
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ApproveDocument(ctx, doc.ID, "10", 1, targetID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, apperrors.ErrAlreadyApproved) {
			dup++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)

	stored, err := f.docRepo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentStage)
	assert.Equal(t, "10", stored.Stages[0].Targets[0].ApprovedBy)
}
