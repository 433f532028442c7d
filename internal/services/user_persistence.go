package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// UsersCollection is the MongoDB collection holding accounts.
	UsersCollection = "users"
	mongoTimeout    = 5 * time.Second
)

// secretFields are excluded from every read unless the caller asks for them.
var secretFields = bson.M{
	"password":              0,
	"reset_password_token":  0,
	"reset_password_expire": 0,
}

// ProfileUpdate carries the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// MongoUserStore persists users in MongoDB.
type MongoUserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewMongoUserStore(coll *mongo.Collection, logger *slog.Logger) *MongoUserStore {
	return &MongoUserStore{coll: coll, logger: logger}
}

// EnsureIndexes creates the unique indexes on email and uid.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uid_unique")},
		{Keys: bson.D{{Key: "reset_password_token", Value: 1}}, Options: options.Index().SetSparse(true).SetName("reset_token")},
	})
	return err
}

// Insert stores a new user. A unique index violation returns ErrDuplicateKey.
func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if id, ok := res.InsertedID.(interface{ Hex() string }); ok {
		s.logger.Debug("user inserted", "uid", user.UID, "object_id", id.Hex())
	}
	return nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string, withSecret bool) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, withSecret)
}

func (s *MongoUserStore) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"uid": uid}, false)
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M, withSecret bool) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.FindOne()
	if !withSecret {
		opts.SetProjection(secretFields)
	}

	var user models.User
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindPublicByUIDs resolves uids to public fields, preserving the order of uids.
// Unknown uids are skipped.
func (s *MongoUserStore) FindPublicByUIDs(ctx context.Context, uids []string) ([]models.PublicUser, error) {
	if len(uids) == 0 {
		return []models.PublicUser{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 0, "uid": 1, "display_name": 1, "photo_url": 1})
	cursor, err := s.coll.Find(ctx, bson.M{"uid": bson.M{"$in": uids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.PublicUser
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byUID := make(map[string]models.PublicUser, len(found))
	for _, u := range found {
		byUID[u.UID] = u
	}
	out := make([]models.PublicUser, 0, len(uids))
	for _, uid := range uids {
		if u, ok := byUID[uid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// SetResetToken stores the digest of a reset token and its expiry.
func (s *MongoUserStore) SetResetToken(ctx context.Context, uid, tokenHash string, expire time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": expire,
		"updated_at":            time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// ConsumeResetToken swaps the password of the user holding an unexpired token
// digest and clears the reset fields in the same update, so a token works once.
func (s *MongoUserStore) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	filter := bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updated_at": now},
		"$unset": bson.M{"reset_password_token": "", "reset_password_expire": ""},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(secretFields)

	var user models.User
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial update and returns the updated user.
func (s *MongoUserStore) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.DisplayName != nil {
		set["display_name"] = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		set["photo_url"] = *upd.PhotoURL
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(secretFields)

	var user models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"uid": uid}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &user, nil
}
