package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/gig-board/internal/model"
)

// gigDocument is the stored shape of a gig. It differs from model.Gig only
// in the type of the identifier, which is a native ObjectID in Mongo.
type gigDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	Price        string             `bson:"price"`
	Description  string             `bson:"description"`
	ContactPhone string             `bson:"contact_phone"`
	ContactEmail string             `bson:"contact_email"`
	ContactName  string             `bson:"contact_name"`
	Location     string             `bson:"location"`
	Category     string             `bson:"category"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *gigDocument) toModel() *model.Gig {
	return &model.Gig{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Price:        d.Price,
		Description:  d.Description,
		ContactPhone: d.ContactPhone,
		ContactEmail: d.ContactEmail,
		ContactName:  d.ContactName,
		Location:     d.Location,
		Category:     d.Category,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoGigRepo stores gigs in a single Mongo collection.
type MongoGigRepo struct {
	coll  *mongo.Collection
	now   func() time.Time
	newID func() primitive.ObjectID
}

// NewMongoGigRepo constructs a MongoGigRepo over the named collection.
func NewMongoGigRepo(db *mongo.Database, collection string) *MongoGigRepo {
	return &MongoGigRepo{coll: db.Collection(collection), now: time.Now, newID: primitive.NewObjectID}
}

// EnsureIndexes creates the indexes backing the list operations. It is
// idempotent and meant to be called once at start-up.
func (r *MongoGigRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: FieldLocation, Value: 1}}},
		{Keys: bson.D{{Key: FieldCategory, Value: 1}}},
	})
	return err
}

// Insert persists g as a new document. The ObjectID and the creation
// timestamp are assigned here and written back to g on success.
func (r *MongoGigRepo) Insert(ctx context.Context, g *model.Gig) error {
	doc := gigDocument{
		ID:           r.newID(),
		Title:        g.Title,
		Price:        g.Price,
		Description:  g.Description,
		ContactPhone: g.ContactPhone,
		ContactEmail: g.ContactEmail,
		ContactName:  g.ContactName,
		Location:     g.Location,
		Category:     g.Category,
		// Mongo keeps millisecond precision; truncate so the caller sees what was stored
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return wrapMongoErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return ErrNotPersisted
	}
	g.ID = oid.Hex()
	g.CreatedAt = doc.CreatedAt
	return nil
}

// Find runs q against the collection and decodes every matching document.
// An empty result is an empty slice, never an error.
func (r *MongoGigRepo) Find(ctx context.Context, q FindQuery) ([]*model.Gig, error) {
	filter, opts, err := mongoFind(q)
	if err != nil {
		return nil, err
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapMongoErr(err)
	}
	var docs []gigDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapMongoErr(err)
	}
	out := make([]*model.Gig, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// mongoFind translates a FindQuery into a filter document and find options.
func mongoFind(q FindQuery) (bson.M, *options.FindOptions, error) {
	if err := q.validate(); err != nil {
		return nil, nil, fmt.Errorf("mongo find: %w", err)
	}
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[k] = v
	}
	opts := options.Find()
	if q.NewestFirst {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return filter, opts, nil
}

// wrapMongoErr makes driver timeouts match context.DeadlineExceeded so the
// service can report them without importing the driver.
func wrapMongoErr(err error) error {
	if mongo.IsTimeout(err) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}
