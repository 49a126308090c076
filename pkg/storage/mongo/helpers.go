package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"blog/pkg/storage"
)

// MongoTestConf points at the throwaway instance used by tests.
var MongoTestConf = &Config{
	Host:   "localhost",
	Port:   "27018",
	DBName: "blog_test",
}

// StorageConnect opens and pings a Storage on MongoTestConf.
func StorageConnect(ctx context.Context) (*Storage, error) {
	db, err := New(ctx, MongoTestConf)
	if err != nil {
		return nil, storage.ErrConnectDB
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, storage.ErrDBNotResponding
	}
	return db, nil
}

// RestoreDB empties every collection the blog uses.
// WARNING: tests only.
func RestoreDB(ctx context.Context, db *Storage) error {
	for _, name := range []string{usersColl, postsColl, commentsColl} {
		if _, err := db.coll(name).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
	}
	return nil
}
