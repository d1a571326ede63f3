package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFind_NoFilterNaturalOrder(t *testing.T) {
	filter, opts, err := mongoFind(FindQuery{Skip: 3, Limit: 2})
	require.NoError(t, err)

	assert.Empty(t, filter)
	assert.Nil(t, opts.Sort)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(3), *opts.Skip)
	assert.Equal(t, int64(2), *opts.Limit)
}

func TestMongoFind_FilterAndSort(t *testing.T) {
	filter, opts, err := mongoFind(FindQuery{NewestFirst: true}.Where(FieldLocation, "Austin"))
	require.NoError(t, err)

	assert.Equal(t, bson.M{"location": "Austin"}, filter)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
	assert.Nil(t, opts.Skip, "zero skip is not sent")
	assert.Nil(t, opts.Limit, "zero limit is not sent")
}

func TestMongoFind_Invalid(t *testing.T) {
	_, _, err := mongoFind(FindQuery{}.Where("contact_email", "a@b.com"))
	assert.ErrorIs(t, err, ErrUnknownField)

	_, _, err = mongoFind(FindQuery{Skip: -1})
	assert.Error(t, err)
}

func TestGigDocument_ToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := gigDocument{
		ID: oid, Title: "Fix Sink", Price: "50", Description: "Leaky pipe",
		ContactPhone: "555-0100", ContactEmail: "a@b.com", ContactName: "Alice",
		Location: "austin", Category: "plumbing", CreatedAt: created,
	}

	g := doc.toModel()
	assert.Equal(t, oid.Hex(), g.ID)
	assert.Equal(t, "Fix Sink", g.Title)
	assert.Equal(t, "50", g.Price)
	assert.Equal(t, "austin", g.Location)
	assert.Equal(t, "plumbing", g.Category)
	assert.Equal(t, created, g.CreatedAt)
}

func TestGigDocument_BSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(gigDocument{ID: primitive.NewObjectID(), ContactPhone: "555"})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, k := range []string{"_id", "title", "price", "description", "contact_phone",
		"contact_email", "contact_name", "location", "category", "created_at"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, "555", m["contact_phone"])
}
