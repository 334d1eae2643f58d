package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	rolesCollection       = "roles"
	membershipsCollection = "memberships"
)

// MongoRoleStore is the MongoDB-backed RoleStore. Documents are keyed by a
// compound "<tenant>:<role>" _id, which makes creates atomic insert-if-absent
// operations at the storage layer.
type MongoRoleStore struct {
	col *mongo.Collection
}

func NewMongoRoleStore(db *mongo.Database) *MongoRoleStore {
	return &MongoRoleStore{col: db.Collection(rolesCollection)}
}

type roleDoc struct {
	ID          string    `bson:"_id"`
	TenantID    string    `bson:"tenant_id"`
	RoleID      string    `bson:"role_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Permissions []string  `bson:"permissions"`
	Modules     []string  `bson:"modules"`
	Resolved    []string  `bson:"resolved"`
	System      bool      `bson:"system"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func roleKey(tenantID uuid.UUID, roleID string) string {
	return tenantID.String() + ":" + roleID
}

func toRoleDoc(r Role) roleDoc {
	return roleDoc{
		ID:          roleKey(r.TenantID, r.ID),
		TenantID:    r.TenantID.String(),
		RoleID:      r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		Modules:     r.Modules,
		Resolved:    r.Resolved,
		System:      r.System,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (d roleDoc) toRole() (Role, error) {
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return Role{}, fmt.Errorf("authz: malformed tenant id in role %s: %w", d.ID, err)
	}
	return Role{
		ID:          d.RoleID,
		TenantID:    tenantID,
		Name:        d.Name,
		Description: d.Description,
		Permissions: d.Permissions,
		Modules:     d.Modules,
		Resolved:    d.Resolved,
		System:      d.System,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (s *MongoRoleStore) Create(ctx context.Context, role Role) error {
	_, err := s.col.InsertOne(ctx, toRoleDoc(role))
	if mongo.IsDuplicateKeyError(err) {
		return ErrRoleExists
	}
	return err
}

func (s *MongoRoleStore) Get(ctx context.Context, tenantID uuid.UUID, roleID string) (Role, error) {
	var doc roleDoc
	err := s.col.FindOne(ctx, bson.M{"_id": roleKey(tenantID, roleID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Role{}, ErrRoleNotFound
	}
	if err != nil {
		return Role{}, err
	}
	return doc.toRole()
}

func (s *MongoRoleStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Role, error) {
	cur, err := s.col.Find(ctx, bson.M{"tenant_id": tenantID.String()})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Role
	for cur.Next(ctx) {
		var doc roleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		role, err := doc.toRole()
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, cur.Err()
}

func (s *MongoRoleStore) Update(ctx context.Context, role Role) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": roleKey(role.TenantID, role.ID)}, toRoleDoc(role))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (s *MongoRoleStore) SetResolved(ctx context.Context, tenantID uuid.UUID, roleID string, resolved []string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": roleKey(tenantID, roleID)},
		bson.M{"$set": bson.M{"resolved": resolved, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (s *MongoRoleStore) Delete(ctx context.Context, tenantID uuid.UUID, roleID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": roleKey(tenantID, roleID)})
	return err
}

// MongoMembershipStore is the MongoDB-backed MembershipStore, keyed by a
// compound "<tenant>:<user>" _id so the one-membership-per-(user, tenant)
// invariant holds under concurrent creates.
type MongoMembershipStore struct {
	col *mongo.Collection
}

func NewMongoMembershipStore(db *mongo.Database) *MongoMembershipStore {
	return &MongoMembershipStore{col: db.Collection(membershipsCollection)}
}

type membershipDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	TenantID  string    `bson:"tenant_id"`
	RoleID    string    `bson:"role_id"`
	IsOwner   bool      `bson:"is_owner"`
	Disabled  bool      `bson:"disabled"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func membershipKey(tenantID, userID uuid.UUID) string {
	return tenantID.String() + ":" + userID.String()
}

func toMembershipDoc(m Membership) membershipDoc {
	return membershipDoc{
		ID:        membershipKey(m.TenantID, m.UserID),
		UserID:    m.UserID.String(),
		TenantID:  m.TenantID.String(),
		RoleID:    m.RoleID,
		IsOwner:   m.IsOwner,
		Disabled:  m.Disabled,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (d membershipDoc) toMembership() (Membership, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return Membership{}, fmt.Errorf("authz: malformed user id in membership %s: %w", d.ID, err)
	}
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return Membership{}, fmt.Errorf("authz: malformed tenant id in membership %s: %w", d.ID, err)
	}
	return Membership{
		UserID:    userID,
		TenantID:  tenantID,
		RoleID:    d.RoleID,
		IsOwner:   d.IsOwner,
		Disabled:  d.Disabled,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (s *MongoMembershipStore) Create(ctx context.Context, m Membership) error {
	_, err := s.col.InsertOne(ctx, toMembershipDoc(m))
	if mongo.IsDuplicateKeyError(err) {
		return ErrMembershipExists
	}
	return err
}

func (s *MongoMembershipStore) Get(ctx context.Context, userID, tenantID uuid.UUID) (Membership, error) {
	var doc membershipDoc
	err := s.col.FindOne(ctx, bson.M{"_id": membershipKey(tenantID, userID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Membership{}, ErrMembershipNotFound
	}
	if err != nil {
		return Membership{}, err
	}
	return doc.toMembership()
}

func (s *MongoMembershipStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Membership, error) {
	return s.list(ctx, bson.M{"tenant_id": tenantID.String()})
}

func (s *MongoMembershipStore) ListByRole(ctx context.Context, tenantID uuid.UUID, roleID string) ([]Membership, error) {
	return s.list(ctx, bson.M{"tenant_id": tenantID.String(), "role_id": roleID})
}

func (s *MongoMembershipStore) list(ctx context.Context, filter bson.M) ([]Membership, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Membership
	for cur.Next(ctx) {
		var doc membershipDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		m, err := doc.toMembership()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (s *MongoMembershipStore) Update(ctx context.Context, m Membership) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": membershipKey(m.TenantID, m.UserID)}, toMembershipDoc(m))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (s *MongoMembershipStore) Delete(ctx context.Context, userID, tenantID uuid.UUID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": membershipKey(tenantID, userID)})
	return err
}
