package types

import (
	"context"
	"time"
)

// Restaurant is a normalized directory result as returned to clients.
type Restaurant struct {
	YelpID   string  `json:"yelp_id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address"`
	Phone    string  `json:"phone"`
	Distance string  `json:"distance"`
	Price    string  `json:"price"`
	YelpURL  string  `json:"yelp_url"`
}

// Favorite is a saved restaurant, keyed by its directory id.
type Favorite struct {
	ID      string  `json:"_id" bson:"_id"`
	Name    string  `json:"name" bson:"name"`
	Rating  float64 `json:"rating" bson:"rating"`
	Address string  `json:"address" bson:"address"`
	Phone   string  `json:"phone" bson:"phone"`
	Price   string  `json:"price" bson:"price"`
	YelpURL string  `json:"yelp_url" bson:"yelp_url"`
}

type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Session binds an opaque token to an account. A zero ExpiresAt never
// expires.
type Session struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

// Business is a raw entry from the directory API. Required fields are
// pointers so that an absent field can be told apart from a zero value.
type Business struct {
	ID           *string    `json:"id"`
	Name         *string    `json:"name"`
	Rating       *float64   `json:"rating"`
	Location     *Location  `json:"location"`
	DisplayPhone *string    `json:"display_phone"`
	Distance     *float64   `json:"distance"`
	Price        *string    `json:"price"`
	URL          *string    `json:"url"`
	Categories   []Category `json:"categories"`
}

type Location struct {
	DisplayAddress []string `json:"display_address"`
}

type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// SearchQuery holds the outbound parameters of a directory search.
// Empty fields are not sent.
type SearchQuery struct {
	Location          string
	RadiusMeters      int
	ReservationTime   string
	ReservationDate   string
	ReservationCovers int
	Categories        string
}

type Directory interface {
	Search(ctx context.Context, q SearchQuery) ([]Business, error)
	Business(ctx context.Context, id string) (*Business, error)
}

type FavoriteStore interface {
	// ListFavorites returns all favorites ordered by rating, ascending.
	ListFavorites(ctx context.Context) ([]Favorite, error)
	// SaveFavorite fails with ErrAlreadyExists when the id is taken.
	SaveFavorite(ctx context.Context, f Favorite) error
	GetFavorite(ctx context.Context, id string) (*Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error
}

type AccountStore interface {
	// CreateAccount stores the account and returns its generated id.
	CreateAccount(ctx context.Context, email, passwordHash string) (string, error)
	// FindAccountsByEmail returns every account registered with email.
	FindAccountsByEmail(ctx context.Context, email string) ([]Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, accountID string) (*Session, error)
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}
