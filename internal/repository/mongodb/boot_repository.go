package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

// Boot documents keep their attributes as top-level string fields next to
// _id, price and the timestamps.
const (
	fieldID        = "_id"
	fieldPrice     = "price"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
	fieldVersion   = "__v"
)

type BootRepository struct {
	col *mongo.Collection
}

func NewBootRepository(db *mongo.Database) repository.BootRepository {
	return &BootRepository{col: db.Collection(bootsCollection)}
}

func (r *BootRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: fieldCreatedAt, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create boots index: %w", err)
	}
	return nil
}

func (r *BootRepository) Create(ctx context.Context, boot *domain.Boot) (string, error) {
	now := time.Now().UTC()
	oid := primitive.NewObjectID()
	boot.CreatedAt = now
	boot.UpdatedAt = now

	doc := bootDocument(*boot)
	doc[fieldID] = oid
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert boot: %w", err)
	}
	boot.ID = oid.Hex()
	return boot.ID, nil
}

func (r *BootRepository) Get(ctx context.Context, id string) (*domain.Boot, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = r.col.FindOne(ctx, bson.M{fieldID: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find boot: %w", err)
	}
	boot := bootFromDocument(doc)
	return &boot, nil
}

func (r *BootRepository) List(ctx context.Context) ([]domain.Boot, error) {
	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: 1}, {Key: fieldID, Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *BootRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Boot, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []domain.Boot{}, nil
	}
	return r.find(ctx, bson.M{fieldID: bson.M{"$in": oids}})
}

func (r *BootRepository) Update(ctx context.Context, id string, patch domain.BootPatch) (*domain.Boot, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{fieldUpdatedAt: time.Now().UTC()}
	for k, v := range patch.Attributes {
		set[k] = v
	}
	update := bson.M{}
	if patch.SetPrice {
		if patch.Price != nil {
			set[fieldPrice] = *patch.Price
		} else {
			update["$unset"] = bson.M{fieldPrice: ""}
		}
	}
	update["$set"] = set

	var doc bson.M
	err = r.col.FindOneAndUpdate(ctx, bson.M{fieldID: oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update boot: %w", err)
	}
	boot := bootFromDocument(doc)
	return &boot, nil
}

func (r *BootRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		return fmt.Errorf("delete boot: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BootRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Boot, error) {
	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("query boots: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode boots: %w", err)
	}

	boots := make([]domain.Boot, 0, len(docs))
	for _, doc := range docs {
		boots = append(boots, bootFromDocument(doc))
	}
	return boots, nil
}

func bootDocument(b domain.Boot) bson.M {
	doc := bson.M{
		fieldCreatedAt: b.CreatedAt,
		fieldUpdatedAt: b.UpdatedAt,
	}
	for k, v := range b.Attributes {
		doc[k] = v
	}
	if b.Price != nil {
		doc[fieldPrice] = *b.Price
	}
	return doc
}

// bootFromDocument tolerates documents written by other tools: prices stored
// as numeric strings are parsed and non-string attribute values are rendered
// as text.
func bootFromDocument(doc bson.M) domain.Boot {
	boot := domain.Boot{Attributes: map[string]string{}}
	for k, v := range doc {
		switch k {
		case fieldID:
			if oid, ok := v.(primitive.ObjectID); ok {
				boot.ID = oid.Hex()
			} else {
				boot.ID = fmt.Sprint(v)
			}
		case fieldPrice:
			if p, ok := domain.CoercePrice(v); ok {
				boot.Price = &p
			}
		case fieldCreatedAt:
			boot.CreatedAt = documentTime(v)
		case fieldUpdatedAt:
			boot.UpdatedAt = documentTime(v)
		case fieldVersion:
		default:
			if s, ok := v.(string); ok {
				boot.Attributes[k] = s
			} else if v != nil {
				boot.Attributes[k] = fmt.Sprint(v)
			}
		}
	}
	return boot
}

func documentTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}
