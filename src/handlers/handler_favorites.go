package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"foodie/src/places"
	"foodie/src/types"
)

//go:embed templates/favorites.html
var templates embed.FS

const msgNoFavorite = "No restaurant with given id found"

type Favorites struct {
	Favorites []types.Favorite `json:"favorites"`
}

type FavoriteData struct {
	RestaurantData types.Favorite `json:"restaurant_data"`
	Message        string         `json:"message"`
}

type DeletedFavorite struct {
	DeletedID string `json:"deleted_id"`
	Message   string `json:"message"`
}

type FavoritesPage struct {
	Name      string
	Total     int
	Favorites []types.Favorite
}

func HandleListFavoritesAPI(w http.ResponseWriter, r *http.Request, store types.FavoriteStore) {
	favorites, err := store.ListFavorites(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Favorites{Favorites: favorites})
}

func HandleGetFavoriteAPI(w http.ResponseWriter, r *http.Request, store types.FavoriteStore) {
	id := r.PathValue("id")
	favorite, err := store.GetFavorite(r.Context(), id)
	if err != nil {
		writeFavoriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteData{
		RestaurantData: *favorite,
		Message:        "Successfully retrieved restaurant from favorites",
	})
}

// HandleSaveFavoriteAPI stores the directory's current detail for id, not
// whatever the client last saw in a search.
func HandleSaveFavoriteAPI(w http.ResponseWriter, r *http.Request, dir types.Directory, store types.FavoriteStore) {
	id := r.PathValue("id")
	business, err := dir.Business(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	favorite, err := places.ToFavorite(*business)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := store.SaveFavorite(r.Context(), favorite); err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FavoriteData{
		RestaurantData: favorite,
		Message:        "favorite restaurant saved successfully!",
	})
}

func HandleDeleteFavoriteAPI(w http.ResponseWriter, r *http.Request, store types.FavoriteStore) {
	id := r.PathValue("id")
	if err := store.DeleteFavorite(r.Context(), id); err != nil {
		writeFavoriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedFavorite{
		DeletedID: id,
		Message:   "Successfully removed restaurant from favorites",
	})
}

func HandleFavoritesHTML(w http.ResponseWriter, r *http.Request, store types.FavoriteStore, tmpl *template.Template) {
	favorites, err := store.ListFavorites(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	data := FavoritesPage{Name: "Favorites", Total: len(favorites), Favorites: favorites}
	var page bytes.Buffer
	if err = tmpl.Execute(&page, data); err != nil {
		log.Printf("Error rendering favorites page: %s", err)
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := page.WriteTo(w); err != nil {
		log.Printf("Error writing favorites page: %s", err)
	}
}

func LoadTemplate() (*template.Template, error) {
	return template.New("favorites.html").Funcs(template.FuncMap{
		"rating": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}).ParseFS(templates, "templates/favorites.html")
}

func writeFavoriteError(w http.ResponseWriter, err error) {
	if errors.Is(err, types.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: KindNotFound, Message: msgNoFavorite})
		return
	}
	WriteError(w, err)
}
