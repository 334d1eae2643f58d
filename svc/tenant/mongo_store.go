package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	tenantsCollection  = "tenants"
	settingsCollection = "tenant_settings"
)

// MongoStore is the MongoDB-backed tenant Store. The unique index on
// (owner_id, name_lower) makes Create atomic against concurrent saga runs
// with the same owner and name; Create surfaces the violation as
// ErrTenantExists.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(tenantsCollection)}
}

// EnsureIndexes creates the uniqueness indexes Create relies on. Call once
// at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name_lower", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "subdomain", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"subdomain": bson.M{"$gt": ""}}),
		},
	})
	if err != nil {
		return fmt.Errorf("tenant: create indexes: %w", err)
	}
	return nil
}

type tenantDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	NameLower       string    `bson:"name_lower"`
	OwnerID         string    `bson:"owner_id"`
	Subdomain       string    `bson:"subdomain,omitempty"`
	BaseCurrency    string    `bson:"base_currency"`
	FiscalYearStart int       `bson:"fiscal_year_start"`
	Modules         []string  `bson:"modules"`
	Active          bool      `bson:"active"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toTenantDoc(t Tenant) tenantDoc {
	return tenantDoc{
		ID:              t.ID.String(),
		Name:            t.Name,
		NameLower:       strings.ToLower(t.Name),
		OwnerID:         t.OwnerID.String(),
		Subdomain:       t.Subdomain,
		BaseCurrency:    t.BaseCurrency,
		FiscalYearStart: int(t.FiscalYearStart),
		Modules:         t.Modules,
		Active:          t.Active,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (d tenantDoc) toTenant() (Tenant, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant: malformed id %q: %w", d.ID, err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant: malformed owner id in %s: %w", d.ID, err)
	}
	return Tenant{
		ID:              id,
		Name:            d.Name,
		OwnerID:         ownerID,
		Subdomain:       d.Subdomain,
		BaseCurrency:    d.BaseCurrency,
		FiscalYearStart: time.Month(d.FiscalYearStart),
		Modules:         d.Modules,
		Active:          d.Active,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, t Tenant) error {
	_, err := s.col.InsertOne(ctx, toTenantDoc(t))
	if mongo.IsDuplicateKeyError(err) {
		return ErrTenantExists
	}
	return err
}

func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) GetByNameAndOwner(ctx context.Context, name string, ownerID uuid.UUID) (Tenant, error) {
	return s.findOne(ctx, bson.M{
		"owner_id":   ownerID.String(),
		"name_lower": strings.ToLower(strings.TrimSpace(name)),
	})
}

func (s *MongoStore) GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error) {
	return s.findOne(ctx, bson.M{"subdomain": strings.ToLower(subdomain)})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (Tenant, error) {
	var doc tenantDoc
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return Tenant{}, err
	}
	return doc.toTenant()
}

func (s *MongoStore) Update(ctx context.Context, t Tenant) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": t.ID.String()}, toTenantDoc(t))
	if mongo.IsDuplicateKeyError(err) {
		return ErrTenantExists
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

// MongoSettingsStore is the MongoDB-backed SettingsStore, one document per
// tenant keyed by tenant id.
type MongoSettingsStore struct {
	col *mongo.Collection
}

func NewMongoSettingsStore(db *mongo.Database) *MongoSettingsStore {
	return &MongoSettingsStore{col: db.Collection(settingsCollection)}
}

type settingsDoc struct {
	ID         string    `bson:"_id"`
	Timezone   string    `bson:"timezone"`
	DateFormat string    `bson:"date_format"`
	Language   string    `bson:"language"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toSettingsDoc(s Settings) settingsDoc {
	return settingsDoc{
		ID:         s.TenantID.String(),
		Timezone:   s.Timezone,
		DateFormat: s.DateFormat,
		Language:   s.Language,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (d settingsDoc) toSettings() (Settings, error) {
	tenantID, err := uuid.Parse(d.ID)
	if err != nil {
		return Settings{}, fmt.Errorf("tenant: malformed id in settings %q: %w", d.ID, err)
	}
	return Settings{
		TenantID:   tenantID,
		Timezone:   d.Timezone,
		DateFormat: d.DateFormat,
		Language:   d.Language,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

func (s *MongoSettingsStore) Create(ctx context.Context, set Settings) error {
	// Upsert keeps saga re-entry idempotent: a retried run overwrites the
	// half-created settings record instead of failing.
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"_id": set.TenantID.String()},
		toSettingsDoc(set),
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoSettingsStore) Get(ctx context.Context, tenantID uuid.UUID) (Settings, error) {
	var doc settingsDoc
	err := s.col.FindOne(ctx, bson.M{"_id": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Settings{}, ErrSettingsNotFound
	}
	if err != nil {
		return Settings{}, err
	}
	return doc.toSettings()
}

func (s *MongoSettingsStore) Update(ctx context.Context, set Settings) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": set.TenantID.String()}, toSettingsDoc(set))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSettingsNotFound
	}
	return nil
}

func (s *MongoSettingsStore) Delete(ctx context.Context, tenantID uuid.UUID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": tenantID.String()})
	return err
}
