package http

import (
	"net/http"
	"strconv"
	"strings"
)

// resourceRoutes is implemented by every ResourceHandler instantiation.
type resourceRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request, id int64)
	Update(w http.ResponseWriter, r *http.Request, id int64)
	Delete(w http.ResponseWriter, r *http.Request, id int64)
}

// Resource binds a handler to its collection path, for example "/api/users".
type Resource struct {
	Path    string
	Handler resourceRoutes
}

type RouterConfig struct {
	Auth      *AuthHandler
	Resources []Resource
	Progress  *ProgressHistoryHandler
	System    *SystemHandler
	// Protect wraps every route that needs an authenticated session.
	Protect    func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	protect := cfg.Protect
	if protect == nil {
		protect = func(next http.Handler) http.Handler { return next }
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Register(w, r)
		})
		mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.Handle("/api/sessions/current", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Auth.CurrentSession(w, r)
			case http.MethodDelete:
				cfg.Auth.DeleteCurrentSession(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})))
		mux.Handle("/api/accounts", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateAccount(w, r)
		})))
	}

	for _, res := range cfg.Resources {
		if res.Handler == nil {
			continue
		}
		mountResource(mux, res, cfg.Progress, protect)
	}

	if cfg.System != nil {
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, http.MethodGet, http.MethodHead)
				return
			}
			cfg.System.Health(w, r)
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, http.MethodGet, http.MethodHead)
				return
			}
			cfg.System.Ready(w, r)
		})
		mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
			cfg.System.responder.writeError(r.Context(), w, http.StatusNotFound, nil)
		})
		mux.HandleFunc("/", cfg.System.Static)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func mountResource(mux *http.ServeMux, res Resource, progress *ProgressHistoryHandler, protect func(http.Handler) http.Handler) {
	collection := strings.TrimSuffix(res.Path, "/")
	h := res.Handler

	mux.Handle(collection, protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})))

	mux.Handle(collection+"/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, collection+"/")
		idPart, sub, nested := strings.Cut(rest, "/")
		if idPart == "" {
			http.NotFound(w, r)
			return
		}
		id, err := parseID(idPart)
		if err != nil {
			newResponder(LoggerFromContext(r.Context())).writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
			return
		}

		if nested {
			if sub == "fitness-progress" && collection == "/api/users" && progress != nil {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				progress.ListForUser(w, r, id)
				return
			}
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			h.Get(w, r, id)
		case http.MethodPut:
			h.Update(w, r, id)
		case http.MethodDelete:
			h.Delete(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	})))
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
