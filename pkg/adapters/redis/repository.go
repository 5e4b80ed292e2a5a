package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/tend/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the repository.
const DefaultPrefix = "tend:items:"

// Keys: <prefix>index is a ZSET of item IDs scored by ID, <prefix>seq holds the
// highest ID ever assigned and <prefix>item:<id> is a HASH with name and completed.

// addScript assigns max(highest indexed ID, seq) + 1 and stores the item atomically.
var addScript = backend.NewScript(`
local top = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local maxid = 0
if top[2] then maxid = tonumber(top[2]) end
local seq = tonumber(redis.call('GET', KEYS[2]) or '0')
if seq > maxid then maxid = seq end
local id = maxid + 1
redis.call('SET', KEYS[2], tostring(id))
redis.call('ZADD', KEYS[1], tostring(id), tostring(id))
redis.call('HSET', ARGV[1] .. tostring(id), 'name', ARGV[2], 'completed', ARGV[3])
return id
`)

// seedScript stores prepared items unless one of their IDs is already indexed,
// in which case it writes nothing and returns the negated ID.
var seedScript = backend.NewScript(`
for i = 2, #ARGV, 3 do
	if redis.call('ZSCORE', KEYS[1], ARGV[i]) then return -tonumber(ARGV[i]) end
end
local seq = tonumber(redis.call('GET', KEYS[2]) or '0')
for i = 2, #ARGV, 3 do
	local id = tonumber(ARGV[i])
	redis.call('ZADD', KEYS[1], tostring(id), tostring(id))
	redis.call('HSET', ARGV[1] .. tostring(id), 'name', ARGV[i+1], 'completed', ARGV[i+2])
	if id > seq then seq = id end
end
redis.call('SET', KEYS[2], tostring(seq))
return seq
`)

var completeScript = backend.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], 'completed', ARGV[1])
return 1
`)

var deleteScript = backend.NewScript(`
local removed = redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
return removed
`)

// Repository implements ports.ItemRepository using Redis.
type Repository struct {
	client *backend.Client
	prefix string
}

// Option configures a Repository.
type Option func(*Repository)

// WithPrefix sets the key prefix for items.
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// New creates a new Redis repository with options.
func New(address, password string, db int, opts ...Option) *Repository {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis repository from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Repository {
	repo := &Repository{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (r *Repository) Client() *backend.Client {
	return r.client
}

func (r *Repository) indexKey() string {
	return r.prefix + "index"
}

func (r *Repository) seqKey() string {
	return r.prefix + "seq"
}

func (r *Repository) itemPrefix() string {
	return r.prefix + "item:"
}

func (r *Repository) itemKey(id int) string {
	return r.itemPrefix() + strconv.Itoa(id)
}

// Seed implements ports.Seeder.
func (r *Repository) Seed(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	existing, highWater, err := r.usedIDs(ctx)
	if err != nil {
		return err
	}
	prepared, err := domain.AssignSeedIDs(existing, highWater, items)
	if err != nil {
		return err
	}

	args := make([]any, 0, 1+3*len(prepared))
	args = append(args, r.itemPrefix())
	for _, it := range prepared {
		args = append(args, it.ID, it.Name, encodeBool(it.IsCompleted))
	}

	res, err := seedScript.Run(ctx, r.client, []string{r.indexKey(), r.seqKey()}, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}
	if res < 0 {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, -res)
	}
	return nil
}

// usedIDs returns the indexed items (IDs only) and the stored high water mark.
func (r *Repository) usedIDs(ctx context.Context) ([]domain.Item, int, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read item index: %w", err)
	}
	items := make([]domain.Item, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, 0, fmt.Errorf("corrupt item index entry %q: %w", m, err)
		}
		items = append(items, domain.Item{ID: id})
	}

	seq, err := r.client.Get(ctx, r.seqKey()).Int()
	if err != nil && !errors.Is(err, backend.Nil) {
		return nil, 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return items, seq, nil
}

// List loads every indexed item and returns them in display order.
func (r *Repository) List(ctx context.Context) ([]domain.Item, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if len(members) == 0 {
		return []domain.Item{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*backend.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, r.itemPrefix()+m)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	items := make([]domain.Item, 0, len(members))
	for i, m := range members {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// Deleted between ZRANGE and HGETALL.
			continue
		}
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt item index entry %q: %w", m, err)
		}
		items = append(items, decodeItem(id, fields))
	}

	return domain.SortItems(items), nil
}

// Add stores the item under the next ID.
func (r *Repository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	id, err := addScript.Run(ctx, r.client,
		[]string{r.indexKey(), r.seqKey()},
		r.itemPrefix(), item.Name, encodeBool(item.IsCompleted),
	).Int()
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to add item: %w", err)
	}

	item.ID = id
	return item, nil
}

// Get retrieves a single item.
func (r *Repository) Get(ctx context.Context, id int) (domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, r.itemKey(id)).Result()
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return decodeItem(id, fields), nil
}

// SetCompleted updates the completion flag.
func (r *Repository) SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	ok, err := completeScript.Run(ctx, r.client, []string{r.itemKey(id)}, encodeBool(completed)).Int()
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	if ok == 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the item. The seq key keeps its ID from being reassigned.
func (r *Repository) Delete(ctx context.Context, id int) error {
	removed, err := deleteScript.Run(ctx, r.client, []string{r.itemKey(id), r.indexKey()}, id).Int()
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if removed == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Close closes the redis client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeItem(id int, fields map[string]string) domain.Item {
	return domain.Item{
		ID:          id,
		Name:        fields["name"],
		IsCompleted: fields["completed"] == "1",
	}
}
