package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

const (
	collectionUsers    = "users"
	collectionCounters = "counters"
	userSequence       = "users"
)

// UserRepository stores directory users in MongoDB. Ids keep the user_<n>
// shape using a counter document so they are never reused.
type UserRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		col:      db.Collection(collectionUsers),
		counters: db.Collection(collectionCounters),
		now:      time.Now,
	}
}

// bsonTime truncates to the millisecond precision BSON datetimes keep, so
// values handed back on write equal the values read later.
func bsonTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// userDoc is the stored shape. Seq preserves insertion order.
type userDoc struct {
	ID        string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Role:      domain.Role(d.Role),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// SeedIfEmpty inserts users only when the collection holds no documents.
func (r *UserRepository) SeedIfEmpty(ctx context.Context, users []domain.NewUser) (bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := r.CreateMany(ctx, users); err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
}

func (r *UserRepository) Paginate(ctx context.Context, page, pageSize int) ([]domain.User, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 || pageSize < 1 {
		return []domain.User{}, total, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	items, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := d.toDomain()
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	users, err := r.CreateMany(ctx, []domain.NewUser{in})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// CreateMany reserves a contiguous id block and inserts in one round trip.
func (r *UserRepository) CreateMany(ctx context.Context, in []domain.NewUser) ([]domain.User, error) {
	if len(in) == 0 {
		return []domain.User{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	last, err := r.reserve(ctx, int64(len(in)))
	if err != nil {
		return nil, err
	}
	first := last - int64(len(in)) + 1

	now := r.now()
	docs := make([]interface{}, 0, len(in))
	out := make([]domain.User, 0, len(in))
	for i, nu := range in {
		d := newUserDoc(first+int64(i), nu, now)
		docs = append(docs, d)
		out = append(out, d.toDomain())
	}

	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert users: %w", err)
	}
	return out, nil
}

func newUserDoc(seq int64, nu domain.NewUser, now time.Time) userDoc {
	d := userDoc{
		ID:        fmt.Sprintf("user_%d", seq),
		Seq:       seq,
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      string(nu.Role),
		CreatedAt: bsonTime(nu.CreatedAt),
		UpdatedAt: bsonTime(now),
	}
	if d.Role == "" {
		d.Role = string(domain.RoleUser)
	}
	if nu.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}
	return d
}

func (r *UserRepository) reserve(ctx context.Context, n int64) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userSequence},
		bson.M{"$inc": bson.M{"value": n}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("reserve user ids: %w", err)
	}
	return counter.Value, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": bsonTime(r.now())}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}

	var d userDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	u := d.toDomain()
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, q string) ([]domain.User, error) {
	return r.find(ctx, searchFilter(q), options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
}

func (r *UserRepository) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.find(ctx, bson.M{"role": string(role)}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, bson.M{})
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	return r.count(ctx, bson.M{"role": string(role)})
}

func (r *UserRepository) count(ctx context.Context, filter bson.M) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// searchFilter matches a case-insensitive literal substring of name, email or role.
func searchFilter(q string) bson.M {
	re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"email": re},
		bson.M{"role": re},
	}}
}
