package docstore

import (
	"context"
	"strings"
	"time"

	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/zlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore persists file records in a single MongoDB collection,
// keyed by file_id,'s MONGO_URI/MONGO_DB contract.
type MongoStore struct {
	collection *mongo.Collection
}

// Connect dials MongoDB. A connection failure is not fatal to the
// caller — it returns an error so the wiring layer can fall back to
// MemoryStore instead of aborting startup ("unset ⇒ metadata
// writes degrade to in-memory").
func Connect(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	return &MongoStore{collection: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Available() bool { return s.collection != nil }

func (s *MongoStore) Upsert(ctx context.Context, rec model.FileRecord) error {
	existing, found, err := s.FindByFileID(ctx, rec.FileID)
	if err != nil {
		return err
	}
	if found {
		rec = mergeRecord(existing, rec)
	} else {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		rec.UpdatedAt = rec.CreatedAt
	}

	_, err = s.collection.ReplaceOne(ctx,
		bson.M{"file_id": rec.FileID},
		rec,
		options.Replace().SetUpsert(true))
	if err != nil {
		zlog.L().Error("mongo upsert failed", zap.String("file_id", rec.FileID), zap.Error(err))
	}
	return err
}

func (s *MongoStore) FindByFileID(ctx context.Context, fileID string) (model.FileRecord, bool, error) {
	var rec model.FileRecord
	err := s.collection.FindOne(ctx, bson.M{"file_id": fileID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return model.FileRecord{}, false, nil
	}
	if err != nil {
		return model.FileRecord{}, false, err
	}
	return rec, true, nil
}

func (s *MongoStore) FindBySubstring(ctx context.Context, terms []string, limit int) ([]model.FileRecord, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var ors []bson.M
	for _, term := range terms {
		re := bson.M{"$regex": strings.ToLower(term), "$options": "i"}
		ors = append(ors,
			bson.M{"descriptive_text": re},
			bson.M{"summary_preview": re},
			bson.M{"original_name": re},
		)
	}

	findOpts := options.Find()
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	cur, err := s.collection.Find(ctx, bson.M{"$or": ors}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.FileRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) All(ctx context.Context) ([]model.FileRecord, error) {
	cur, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.FileRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
