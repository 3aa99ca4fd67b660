package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/olivere/elastic/v7"

	"foodie/src/types"
)

const (
	// maxResultWindow bounds how many favorites a single listing returns.
	maxResultWindow = 20000

	// maxAccountsPerEmail bounds how many accounts sharing an email a login
	// tries, oldest first.
	maxAccountsPerEmail = 100
)

//go:embed mappings/*.json
var mappings embed.FS

var (
	_ types.FavoriteStore = (*ElasticStore)(nil)
	_ types.AccountStore  = (*ElasticStore)(nil)
)

type favoriteDoc struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Price   string  `json:"price"`
	YelpURL string  `json:"yelp_url"`
}

type userDoc struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"hashed_pwd"`
	CreatedAt    time.Time `json:"created_at"`
}

// ElasticStore keeps favorites in one index, keyed by the directory id,
// and accounts in another with generated ids.
type ElasticStore struct {
	Client         *elastic.Client
	FavoritesIndex string
	UsersIndex     string
}

// NewElasticStore connects to url and creates the indices named
// <prefix>_favorites and <prefix>_users when they are missing.
func NewElasticStore(ctx context.Context, url, prefix string) (*ElasticStore, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	es := &ElasticStore{
		Client:         client,
		FavoritesIndex: prefix + "_favorites",
		UsersIndex:     prefix + "_users",
	}
	if err := es.CreateIndexWithMapping(ctx, es.FavoritesIndex, "mappings/favorites.json"); err != nil {
		client.Stop()
		return nil, err
	}
	if err := es.CreateIndexWithMapping(ctx, es.UsersIndex, "mappings/users.json"); err != nil {
		client.Stop()
		return nil, err
	}
	return es, nil
}

func (es *ElasticStore) Close() {
	es.Client.Stop()
}

// CreateIndexWithMapping creates index from an embedded mapping file unless
// it already exists.
func (es *ElasticStore) CreateIndexWithMapping(ctx context.Context, index, mappingPath string) error {
	exists, err := es.Client.IndexExists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("checking index %s: %w: %v", index, types.ErrStoreUnavailable, err)
	}
	if exists {
		log.Printf("Index %s already exists.", index)
		return nil
	}

	schema, err := mappings.ReadFile(mappingPath)
	if err != nil {
		return err
	}

	created, err := es.Client.CreateIndex(index).BodyString(string(schema)).Do(ctx)
	if err != nil {
		return fmt.Errorf("creating index %s: %w: %v", index, types.ErrStoreUnavailable, err)
	}
	if !created.Acknowledged {
		log.Printf("CreateIndex %s was not acknowledged. Check that timeout value is correct.", index)
	}

	settings := map[string]interface{}{
		"index": map[string]interface{}{
			"max_result_window": maxResultWindow,
		},
	}
	if err := es.updateIndexSettings(ctx, index, settings); err != nil {
		return err
	}

	log.Printf("Index %s created!", index)
	return nil
}

func (es *ElasticStore) updateIndexSettings(ctx context.Context, index string, settings map[string]interface{}) error {
	if _, err := es.Client.IndexPutSettings(index).BodyJson(settings).Do(ctx); err != nil {
		return fmt.Errorf("updating settings of %s: %w: %v", index, types.ErrStoreUnavailable, err)
	}
	return nil
}

func (es *ElasticStore) ListFavorites(ctx context.Context) ([]types.Favorite, error) {
	result, err := es.Client.Search().
		Index(es.FavoritesIndex).
		Query(elastic.NewMatchAllQuery()).
		Sort("rating", true).
		Size(maxResultWindow).
		Do(ctx)
	if err != nil {
		return nil, elasticErr("listing favorites", err)
	}

	favorites := make([]types.Favorite, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		f, err := decodeFavorite(hit.Id, hit.Source)
		if err != nil {
			log.Printf("Error unmarshalling favorite %s: %s", hit.Id, err)
			continue
		}
		favorites = append(favorites, f)
	}
	return favorites, nil
}

// SaveFavorite indexes with op_type=create so a second save of the same id
// is rejected by the store.
func (es *ElasticStore) SaveFavorite(ctx context.Context, f types.Favorite) error {
	_, err := es.Client.Index().
		Index(es.FavoritesIndex).
		Id(f.ID).
		OpType("create").
		BodyJson(encodeFavorite(f)).
		Refresh("wait_for").
		Do(ctx)
	if err != nil {
		return elasticErr("saving favorite "+f.ID, err)
	}
	return nil
}

func (es *ElasticStore) GetFavorite(ctx context.Context, id string) (*types.Favorite, error) {
	res, err := es.Client.Get().Index(es.FavoritesIndex).Id(id).Do(ctx)
	if err != nil {
		return nil, elasticErr("getting favorite "+id, err)
	}
	if !res.Found {
		return nil, types.ErrNotFound
	}
	f, err := decodeFavorite(res.Id, res.Source)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (es *ElasticStore) DeleteFavorite(ctx context.Context, id string) error {
	res, err := es.Client.Delete().Index(es.FavoritesIndex).Id(id).Refresh("wait_for").Do(ctx)
	if err != nil {
		return elasticErr("deleting favorite "+id, err)
	}
	if res.Result == "not_found" {
		return types.ErrNotFound
	}
	return nil
}

func (es *ElasticStore) CreateAccount(ctx context.Context, email, passwordHash string) (string, error) {
	res, err := es.Client.Index().
		Index(es.UsersIndex).
		BodyJson(userDoc{Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}).
		Refresh("wait_for").
		Do(ctx)
	if err != nil {
		return "", elasticErr("creating account", err)
	}
	return res.Id, nil
}

func (es *ElasticStore) FindAccountsByEmail(ctx context.Context, email string) ([]types.Account, error) {
	result, err := es.Client.Search().
		Index(es.UsersIndex).
		SearchSource(accountsByEmailSource(email)).
		Do(ctx)
	if err != nil {
		return nil, elasticErr("finding accounts", err)
	}

	var accounts []types.Account
	for _, hit := range result.Hits.Hits {
		a, err := decodeAccount(hit.Id, hit.Source)
		if err != nil {
			log.Printf("Error unmarshalling account %s: %s", hit.Id, err)
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (es *ElasticStore) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	res, err := es.Client.Get().Index(es.UsersIndex).Id(id).Do(ctx)
	if err != nil {
		return nil, elasticErr("getting account "+id, err)
	}
	if !res.Found {
		return nil, types.ErrNotFound
	}
	a, err := decodeAccount(res.Id, res.Source)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// accountsByEmailSource finds the accounts registered with email, oldest
// first.
func accountsByEmailSource(email string) *elastic.SearchSource {
	return elastic.NewSearchSource().
		Query(elastic.NewTermQuery("email", email)).
		SortBy(elastic.NewFieldSort("created_at").Asc().UnmappedType("date_nanos")).
		Size(maxAccountsPerEmail)
}

func encodeFavorite(f types.Favorite) favoriteDoc {
	return favoriteDoc{
		Name:    f.Name,
		Rating:  f.Rating,
		Address: f.Address,
		Phone:   f.Phone,
		Price:   f.Price,
		YelpURL: f.YelpURL,
	}
}

func decodeFavorite(id string, source json.RawMessage) (types.Favorite, error) {
	var doc favoriteDoc
	if err := json.Unmarshal(source, &doc); err != nil {
		return types.Favorite{}, fmt.Errorf("decoding favorite %s: %w", id, err)
	}
	return types.Favorite{
		ID:      id,
		Name:    doc.Name,
		Rating:  doc.Rating,
		Address: doc.Address,
		Phone:   doc.Phone,
		Price:   doc.Price,
		YelpURL: doc.YelpURL,
	}, nil
}

func decodeAccount(id string, source json.RawMessage) (types.Account, error) {
	var doc userDoc
	if err := json.Unmarshal(source, &doc); err != nil {
		return types.Account{}, fmt.Errorf("decoding account %s: %w", id, err)
	}
	return types.Account{ID: id, Email: doc.Email, PasswordHash: doc.PasswordHash}, nil
}

func elasticErr(op string, err error) error {
	switch {
	case elastic.IsNotFound(err):
		return types.ErrNotFound
	case elastic.IsConflict(err):
		return types.ErrAlreadyExists
	default:
		return fmt.Errorf("%s: %w: %v", op, types.ErrStoreUnavailable, err)
	}
}
