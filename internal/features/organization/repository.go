package organization

import (
	"context"
	"fmt"

	"go-docflow/internal/common/models"
	"go-docflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Directory is the organization lookup surface the target resolver depends on.
// Errors must propagate: the resolver treats any failure as a denial.
type Directory interface {
	// MembersOf returns the user ids of everyone belonging to the organization.
	MembersOf(ctx context.Context, orgID string) ([]string, error)
	// ManagerAt returns the leaders at the given ancestor level: level 1 is the
	// organization's own leaders, level 2 the parent organization's, and so on.
	// Walking past the root yields an empty set.
	ManagerAt(ctx context.Context, orgID string, level int) ([]string, error)
}

type OrganizationRepository interface {
	Directory

	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

type OrganizationRepositoryImpl struct {
	Collection *mongo.Collection
	Users      *mongo.Collection
}

func NewOrganizationRepository(mongodb *database.MongodbDB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		Collection: mongodb.DB.Collection("organizations"),
		Users:      mongodb.DB.Collection("users"),
	}
}

func (r *OrganizationRepositoryImpl) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.Collection.InsertOne(ctx, org)
	return err
}

func (r *OrganizationRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var org models.Organization
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) MembersOf(ctx context.Context, orgID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization id %q: %w", orgID, err)
	}

	cursor, err := r.Users.Find(ctx, bson.M{"org_id": oid, "status": "active"})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	members := make([]string, 0, len(users))
	for _, u := range users {
		members = append(members, u.ID.Hex())
	}
	return members, nil
}

func (r *OrganizationRepositoryImpl) ManagerAt(ctx context.Context, orgID string, level int) ([]string, error) {
	if level < 1 {
		return nil, fmt.Errorf("manager level must be >= 1, got %d", level)
	}

	org, err := r.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization %s not found", orgID)
	}

	// Walk level-1 hops up the parent chain. Running off the root is not an
	// error: there is simply nobody at that level.
	for hop := 1; hop < level; hop++ {
		if org.ParentID == nil {
			return []string{}, nil
		}
		org, err = r.FindByID(ctx, org.ParentID.Hex())
		if err != nil {
			return nil, err
		}
		if org == nil {
			return []string{}, nil
		}
	}

	leaders := make([]string, 0, len(org.LeaderIDs))
	leaders = append(leaders, org.LeaderIDs...)
	return leaders, nil
}
