package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

type orderDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	User       primitive.ObjectID   `bson:"user"`
	Boots      []primitive.ObjectID `bson:"boots"`
	TotalPrice float64              `bson:"totalPrice"`
	CreatedAt  time.Time            `bson:"createdAt"`
}

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create orders index: %w", err)
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (string, error) {
	user, err := primitive.ObjectIDFromHex(order.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q", order.UserID)
	}
	boots, err := objectIDs(order.BootIDs)
	if err != nil {
		return "", err
	}

	doc := orderDocument{
		ID:         primitive.NewObjectID(),
		User:       user,
		Boots:      boots,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	order.ID = doc.ID.Hex()
	return order.ID, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Order{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, domain.Order{
			ID:         doc.ID.Hex(),
			UserID:     doc.User.Hex(),
			BootIDs:    hexIDs(doc.Boots),
			TotalPrice: doc.TotalPrice,
			CreatedAt:  doc.CreatedAt.UTC(),
		})
	}
	return orders, nil
}
