package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "cache:"

type valkeyRecord struct {
	Result     json.RawMessage `json:"result"`
	ComputedAt int64           `json:"computed_at"`
}

// ValkeyRepository keeps cache entries in a Valkey/Redis server. Keys carry
// no TTL so a stale entry stays readable until it is overwritten.
type ValkeyRepository struct {
	client valkey.Client
}

func NewValkeyRepository(client valkey.Client) *ValkeyRepository {
	return &ValkeyRepository{client: client}
}

func (r *ValkeyRepository) Get(ctx context.Context, url string) (*models.CacheEntry, error) {
	buf, err := r.client.Do(ctx, r.client.B().Get().Key(keyPrefix+url).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("valkey: error getting entry: %w", err)
	}

	var rec valkeyRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("valkey: error decoding entry: %w", err)
	}
	return &models.CacheEntry{
		URL:        url,
		Result:     []byte(rec.Result),
		ComputedAt: time.Unix(rec.ComputedAt, 0),
	}, nil
}

func (r *ValkeyRepository) Put(ctx context.Context, e *models.CacheEntry) error {
	buf, err := json.Marshal(valkeyRecord{Result: json.RawMessage(e.Result), ComputedAt: e.ComputedAt.Unix()})
	if err != nil {
		return fmt.Errorf("valkey: error encoding entry: %w", err)
	}
	cmd := r.client.B().Set().Key(keyPrefix + e.URL).Value(valkey.BinaryString(buf)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey: error storing entry: %w", err)
	}
	return nil
}
