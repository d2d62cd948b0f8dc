package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/domain"
)

// NewHandler returns the JSON API:
//
//	POST  /users                 onboard a user, dropping its color tally
//	POST  /onboarding/users      onboard a user without cache invalidation
//	GET   /users/{id}            find a user
//	PATCH /users/{id}/color      change the favorite color
//	GET   /colors/{color}/tally  count the users of a color
//	GET   /healthz               liveness
func NewHandler(log *zap.Logger, factory EffectsFactory) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(correlate(log), logRequests, recoverer)

	r.Get("/healthz", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(withEffects(factory))

		r.Post("/users", handleOnboardProfile)
		r.Post("/onboarding/users", handleOnboard)
		r.Get("/users/{id}", handleGetUser)
		r.Patch("/users/{id}/color", handleUpdateColor)
		r.Get("/colors/{color}/tally", handleColorTally)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusNotFound, errorBody{
			Category: goerrors.CategoryRouting,
			TextCode: "ROUTE_NOT_FOUND",
			Message:  "no route for " + r.Method + " " + r.URL.Path,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusMethodNotAllowed, errorBody{
			Category: goerrors.CategoryMethodNotAllowed,
			TextCode: "METHOD_NOT_ALLOWED",
			Message:  r.Method + " not allowed on " + r.URL.Path,
		})
	})
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func handleOnboardProfile(w http.ResponseWriter, r *http.Request) {
	var input domain.OnboardUserInput
	if err := decodeJSON(r.Body, &input); err != nil {
		respondErr(w, r, err)
		return
	}

	user, err := domain.NewProfile(effectsFrom(r.Context())).OnboardUser(r.Context(), input)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, user)
}

func handleOnboard(w http.ResponseWriter, r *http.Request) {
	var input domain.OnboardUserInput
	if err := decodeJSON(r.Body, &input); err != nil {
		respondErr(w, r, err)
		return
	}

	user, err := domain.NewOnboarding(effectsFrom(r.Context())).OnboardUser(r.Context(), input)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, user)
}

func handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := domain.NewUsers(effectsFrom(r.Context())).FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user)
}

type updateColorRequest struct {
	FavoriteColor domain.Color `json:"favoriteColor"`
	By            domain.Actor `json:"by"`
}

func handleUpdateColor(w http.ResponseWriter, r *http.Request) {
	var req updateColorRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	user, err := domain.NewProfile(effectsFrom(r.Context())).
		UpdateFavoriteColor(r.Context(), chi.URLParam(r, "id"), req.FavoriteColor, req.By)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user)
}

func handleColorTally(w http.ResponseWriter, r *http.Request) {
	color := domain.Color(chi.URLParam(r, "color"))
	tally, err := domain.NewProfile(effectsFrom(r.Context())).FindColorTally(r.Context(), color)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tally)
}
