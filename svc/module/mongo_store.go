package module

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const installationsCollection = "module_installations"

// MongoStore is the MongoDB-backed Store. Records are keyed by a compound
// "<tenant>:<code>" _id; CreateIfAbsent maps to an upsert with $setOnInsert
// so concurrent activations cannot produce duplicates.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(installationsCollection)}
}

type installationDoc struct {
	ID          string         `bson:"_id"`
	TenantID    string         `bson:"tenant_id"`
	Code        string         `bson:"code"`
	Initialized bool           `bson:"initialized"`
	Status      string         `bson:"initialization_status"`
	Config      map[string]any `bson:"config,omitempty"`
	Implicit    bool           `bson:"is_implicit"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

func installationKey(tenantID uuid.UUID, code string) string {
	return tenantID.String() + ":" + code
}

func toDoc(inst Installation) installationDoc {
	return installationDoc{
		ID:          installationKey(inst.TenantID, inst.Code),
		TenantID:    inst.TenantID.String(),
		Code:        inst.Code,
		Initialized: inst.Initialized,
		Status:      string(inst.Status),
		Config:      inst.Config,
		Implicit:    inst.Implicit,
		CreatedAt:   inst.CreatedAt,
		UpdatedAt:   inst.UpdatedAt,
	}
}

func (d installationDoc) toInstallation() (Installation, error) {
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return Installation{}, fmt.Errorf("module: malformed tenant id in installation %s: %w", d.ID, err)
	}
	return Installation{
		TenantID:    tenantID,
		Code:        d.Code,
		Initialized: d.Initialized,
		Status:      InitStatus(d.Status),
		Config:      d.Config,
		Implicit:    d.Implicit,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, tenantID uuid.UUID, code string) (Installation, error) {
	var doc installationDoc
	err := s.col.FindOne(ctx, bson.M{"_id": installationKey(tenantID, code)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Installation{}, ErrInstallationNotFound
	}
	if err != nil {
		return Installation{}, err
	}
	return doc.toInstallation()
}

func (s *MongoStore) List(ctx context.Context, tenantID uuid.UUID) ([]Installation, error) {
	cur, err := s.col.Find(ctx, bson.M{"tenant_id": tenantID.String()})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Installation
	for cur.Next(ctx) {
		var doc installationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		inst, err := doc.toInstallation()
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateIfAbsent(ctx context.Context, inst Installation) (bool, error) {
	doc := toDoc(inst)
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": doc.ID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (s *MongoStore) CreateBatch(ctx context.Context, insts []Installation) error {
	if len(insts) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(insts))
	for _, inst := range insts {
		doc := toDoc(inst)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}

	_, err := s.col.BulkWrite(ctx, models)
	return err
}

func (s *MongoStore) Promote(ctx context.Context, tenantID uuid.UUID, code string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": installationKey(tenantID, code), "is_implicit": true},
		bson.M{"$set": bson.M{
			"is_implicit":       false,
			"config.isImplicit": false,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either absent or already explicit; only the former is an error.
		n, err := s.col.CountDocuments(ctx, bson.M{"_id": installationKey(tenantID, code)})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInstallationNotFound
		}
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, inst Installation) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": installationKey(inst.TenantID, inst.Code)}, toDoc(inst))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInstallationNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, tenantID uuid.UUID, code string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": installationKey(tenantID, code)})
	return err
}
