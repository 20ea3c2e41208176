// Package mongostore implements storage.Store on MongoDB. Units of work
// use multi-document transactions, which need a replica set or sharded
// cluster (MongoDB 4.4+ for implicit collection creation in transactions).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

const (
	usersCollection       = "users"
	specialistsCollection = "specialists"
	servicesCollection    = "services"
	bookingsCollection    = "bookings"
	locksCollection       = "schedule_locks"
)

// Store is a MongoDB-backed storage.Store.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	users       *mongo.Collection
	specialists *mongo.Collection
	services    *mongo.Collection
	bookings    *mongo.Collection
	locks       *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

// Open connects, pings the primary and ensures indexes.
func Open(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database is required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client, client.Database(database))
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an already connected client.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:      client,
		db:          db,
		users:       db.Collection(usersCollection),
		specialists: db.Collection(specialistsCollection),
		services:    db.Collection(servicesCollection),
		bookings:    db.Collection(bookingsCollection),
		locks:       db.Collection(locksCollection),
	}
}

// EnsureIndexes creates the uniqueness and lookup indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.specialists: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.services: {
			{Keys: bson.D{{Key: "title", Value: 1}}},
		},
		s.bookings: {
			{
				Keys: bson.D{
					{Key: "specialist", Value: 1},
					{Key: "serviceDate", Value: 1},
					{Key: "startTime", Value: 1},
				},
				Options: options.Index().
					SetName("uniq_booked_slot").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": models.StatusBooked}),
			},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "serviceDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endTime", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
		}
	}
	return nil
}

// WithinTx runs fn inside a MongoDB transaction. Calls nested in an
// existing session join it.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		log.Printf("mongostore: transaction aborted: %v", err)
	}
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// LockSpecialistDay upserts the lock document for the day. Two open
// transactions writing the same document conflict, and the driver
// retries the loser, whose conflict check then sees the winner's write.
func (s *Store) LockSpecialistDay(ctx context.Context, specialistID primitive.ObjectID, serviceDate time.Time) error {
	key := specialistID.Hex() + ":" + serviceDate.UTC().Format("2006-01-02")
	_, err := s.locks.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"version": 1}, "$set": bson.M{"touchedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("lock specialist day: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return out, translate(err)
	}
	return out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc any) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func byIDs(ids []primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
