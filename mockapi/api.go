package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/token"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/jrsteele09/fedteam/users"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// API is an in-memory implementation of the Fed Team REST backend.
type API struct {
	router  *mux.Router
	users   users.UserRepo
	treinos trainings.TreinoRepo
	issuer  *token.Issuer
	plugin  *pluginSim
}

func New(userRepo users.UserRepo, treinoRepo trainings.TreinoRepo, issuer *token.Issuer) *API {
	a := &API{
		router:  mux.NewRouter(),
		users:   userRepo,
		treinos: treinoRepo,
		issuer:  issuer,
		plugin:  newPluginSim(),
	}
	a.initRoutes()
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) initRoutes() {
	a.router.Use(loggingMiddleware)
	a.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, apiclient.MsgNotFound)
	})

	a.router.HandleFunc(apiclient.EndpointLogin, a.Login()).Methods(http.MethodPost)

	v1 := a.router.PathPrefix("/v1").Subrouter()
	v1.Use(a.bearerMiddleware)

	v1.HandleFunc("/usuarios", a.ListUsuarios()).Methods(http.MethodGet)
	v1.HandleFunc("/usuarios", a.requireAdmin(a.CreateUsuario())).Methods(http.MethodPost)
	v1.HandleFunc("/usuarios/{id:[0-9]+}", a.GetUsuario()).Methods(http.MethodGet)
	v1.HandleFunc("/usuarios/{id:[0-9]+}", a.requireAdmin(a.UpdateUsuario())).Methods(http.MethodPut)
	v1.HandleFunc("/usuarios/{id:[0-9]+}", a.requireAdmin(a.DeleteUsuario())).Methods(http.MethodDelete)

	v1.HandleFunc("/treino", a.ListTreinos()).Methods(http.MethodGet)
	v1.HandleFunc("/treino", a.requireTrainer(a.CreateTreino())).Methods(http.MethodPost)
	v1.HandleFunc("/treino/with-users", a.ListTreinosWithUsers()).Methods(http.MethodGet)
	v1.HandleFunc("/treino/{id:[0-9]+}", a.GetTreino()).Methods(http.MethodGet)
	v1.HandleFunc("/treino/{id:[0-9]+}", a.requireTrainer(a.UpdateTreino())).Methods(http.MethodPut)
	v1.HandleFunc("/treino/{id:[0-9]+}", a.requireTrainer(a.DeleteTreino())).Methods(http.MethodDelete)

	a.plugin.routes(a.router)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := NowTimeFunc()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("mockapi request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers in the shape the front-end reads: message first, error as a fallback.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"message": message,
		"error":   http.StatusText(status),
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
