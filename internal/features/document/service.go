package document

import (
	"context"
	"fmt"
	"time"

	"go-docflow/internal/features/template"
	"go-docflow/pkg/apperrors"

	"go.uber.org/zap"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, templateID, actorID, title, content string) (*Document, error)
	GetDocument(ctx context.Context, id, actorID string, isAdmin bool) (*Document, error)
	UpdateDocument(ctx context.Context, id, actorID, title, content string) (*Document, error)
	DeleteDocument(ctx context.Context, id, actorID string, isAdmin bool) error
	SubmitDocument(ctx context.Context, id, actorID string) (*Document, error)
	ApproveDocument(ctx context.Context, id, actorID string, stageOrder int, targetID string) (*Document, error)
	RejectDocument(ctx context.Context, id, actorID string, stageOrder int, targetID, reason string) (*Document, error)
	ListMine(ctx context.Context, actorID string) ([]Document, error)
	ListInbox(ctx context.Context, actorID string) ([]Document, error)
	ListActivities(ctx context.Context, docID, actorID string, isAdmin bool) ([]Activity, error)
}

type DocumentServiceImpl struct {
	Repo         DocumentRepository
	ActivityRepo ActivityRepository
	TemplateRepo template.TemplateRepository
	Engine       *Engine
	Permissions  *PermissionEvaluator
	Recorder     ActivityRecorder
	Logger       *zap.Logger

	locks *docLocks
}

func NewDocumentService(
	repo DocumentRepository,
	activityRepo ActivityRepository,
	templateRepo template.TemplateRepository,
	engine *Engine,
	permissions *PermissionEvaluator,
	recorder ActivityRecorder,
	logger *zap.Logger,
) DocumentService {
	return &DocumentServiceImpl{
		Repo:         repo,
		ActivityRepo: activityRepo,
		TemplateRepo: templateRepo,
		Engine:       engine,
		Permissions:  permissions,
		Recorder:     recorder,
		Logger:       logger,
		locks:        newDocLocks(),
	}
}

func (s *DocumentServiceImpl) CreateDocument(ctx context.Context, templateID, actorID, title, content string) (*Document, error) {
	tpl, err := s.TemplateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("template %s: %w", templateID, apperrors.ErrNotFound)
	}

	doc := Instantiate(tpl, actorID, title, content)
	if err := s.Repo.Insert(ctx, doc); err != nil {
		return nil, err
	}

	s.Recorder.Record(ctx, doc.ID, actorID, ActivityCreate,
		fmt.Sprintf("created document %q from template %q", title, tpl.Name), "")
	s.Logger.Info("document created",
		zap.String("document", doc.ID),
		zap.String("actor", actorID),
		zap.String("template", templateID))

	return doc, nil
}

func (s *DocumentServiceImpl) GetDocument(ctx context.Context, id, actorID string, isAdmin bool) (*Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Permissions.CanView(ctx, doc, actorID, isAdmin) {
		return nil, fmt.Errorf("view document %s: %w", id, apperrors.ErrForbidden)
	}
	return doc, nil
}

func (s *DocumentServiceImpl) UpdateDocument(ctx context.Context, id, actorID, title, content string) (*Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Permissions.CanEdit(doc, actorID) {
		return nil, fmt.Errorf("edit document %s: %w", id, apperrors.ErrForbidden)
	}
	if doc.Status != StatusDraft {
		return nil, fmt.Errorf("edit requires DRAFT, document is %s: %w", doc.Status, apperrors.ErrInvalidState)
	}

	doc.Title = title
	doc.Content = content
	doc.UpdatedAt = time.Now()

	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.Recorder.Record(ctx, doc.ID, actorID, ActivityUpdate, "updated draft", "")
	return doc, nil
}

// DeleteDocument removes the document and its activity trail as one explicit
// cascade. There is no implicit deletion path.
func (s *DocumentServiceImpl) DeleteDocument(ctx context.Context, id, actorID string, isAdmin bool) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && doc.AuthorID != actorID {
		return fmt.Errorf("delete document %s: %w", id, apperrors.ErrForbidden)
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.ActivityRepo.DeleteByDocument(ctx, id); err != nil {
		s.Logger.Warn("failed to cascade activity deletion",
			zap.String("document", id),
			zap.Error(err))
	}

	s.Logger.Info("document deleted",
		zap.String("document", id),
		zap.String("actor", actorID))
	return nil
}

func (s *DocumentServiceImpl) SubmitDocument(ctx context.Context, id, actorID string) (*Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Submit(doc, actorID); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.Recorder.Record(ctx, doc.ID, actorID, ActivitySubmit, "submitted for approval", "")
	s.Logger.Info("document submitted",
		zap.String("document", doc.ID),
		zap.String("actor", actorID),
		zap.String("status", string(doc.Status)))

	return doc, nil
}

func (s *DocumentServiceImpl) ApproveDocument(ctx context.Context, id, actorID string, stageOrder int, targetID string) (*Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Approve(ctx, doc, actorID, stageOrder, targetID); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.Recorder.Record(ctx, doc.ID, actorID, ActivityApprove,
		fmt.Sprintf("approved stage %d", stageOrder), "")
	s.Logger.Info("target approved",
		zap.String("document", doc.ID),
		zap.String("actor", actorID),
		zap.Int("stage", stageOrder),
		zap.String("status", string(doc.Status)))

	return doc, nil
}

func (s *DocumentServiceImpl) RejectDocument(ctx context.Context, id, actorID string, stageOrder int, targetID, reason string) (*Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Reject(ctx, doc, actorID, stageOrder, targetID); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.Recorder.Record(ctx, doc.ID, actorID, ActivityReject,
		fmt.Sprintf("rejected at stage %d", stageOrder), reason)
	s.Logger.Info("document rejected",
		zap.String("document", doc.ID),
		zap.String("actor", actorID),
		zap.Int("stage", stageOrder))

	return doc, nil
}

func (s *DocumentServiceImpl) ListMine(ctx context.Context, actorID string) ([]Document, error) {
	return s.Repo.ListByAuthor(ctx, actorID)
}

// ListInbox returns in-progress documents whose active stage the actor can
// currently approve. Targets that fail to resolve are skipped (fail closed).
func (s *DocumentServiceImpl) ListInbox(ctx context.Context, actorID string) ([]Document, error) {
	open, err := s.Repo.ListByStatus(ctx, StatusInProgress)
	if err != nil {
		return nil, err
	}

	inbox := make([]Document, 0)
	for i := range open {
		if s.Permissions.CanApprove(ctx, &open[i], actorID, open[i].CurrentStage) {
			inbox = append(inbox, open[i])
		}
	}
	return inbox, nil
}

func (s *DocumentServiceImpl) ListActivities(ctx context.Context, docID, actorID string, isAdmin bool) ([]Activity, error) {
	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !s.Permissions.CanView(ctx, doc, actorID, isAdmin) {
		return nil, fmt.Errorf("view document %s: %w", docID, apperrors.ErrForbidden)
	}
	return s.Recorder.List(ctx, docID)
}

func (s *DocumentServiceImpl) load(ctx context.Context, id string) (*Document, error) {
	doc, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", id, apperrors.ErrNotFound)
	}
	return doc, nil
}
