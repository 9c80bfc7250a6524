package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/catalog"
	"github.com/matzehuels/libmirror/pkg/config"
	liberrors "github.com/matzehuels/libmirror/pkg/errors"
	"github.com/matzehuels/libmirror/pkg/library"
)

const defaultServeAddr = "127.0.0.1:8080"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mirror tree and catalog over HTTP",
		Long: `Serve exposes a mirror over HTTP:

  GET /healthz                                   liveness
  GET /libraries                                 catalog entries (?group=&artifact=&limit=)
  GET /libraries/{group}/{artifact}/{version}    parsed library.xml
  GET /files/...                                 the library tree itself`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(nil)
			if err != nil {
				return err
			}

			store, err := catalog.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			return c.serve(ctx, addr, newLibraryServer(cfg, store, c.Logger).routes())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	return cmd
}

// serve runs handler on addr until ctx is cancelled.
func (c *CLI) serve(ctx context.Context, addr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	printSuccess("Serving on %s", StyleLink.Render("http://"+listener.Addr().String()))
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// libraryServer answers HTTP requests about one mirror destination.
type libraryServer struct {
	store  catalog.Store
	layout library.Layout
	logger *log.Logger
}

func newLibraryServer(cfg *config.Config, store catalog.Store, logger *log.Logger) *libraryServer {
	return &libraryServer{
		store: store,
		layout: library.Layout{
			Root:           cfg.Output.Destination,
			LibraryDir:     cfg.Output.LibraryDir,
			DescriptorName: cfg.Output.DescriptorName,
		},
		logger: logger,
	}
}

func (s *libraryServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/libraries", s.handleList)
	r.Get("/libraries/{group}/{artifact}/{version}", s.handleDescriptor)

	files := http.FileServer(http.Dir(filepath.Join(s.layout.Root, s.layout.LibraryDir)))
	r.Handle("/files/*", http.StripPrefix("/files", files))
	return r
}

func (s *libraryServer) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Group:    q.Get("group"),
		Artifact: q.Get("artifact"),
		Version:  q.Get("version"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = limit
	}

	entries, err := s.store.List(r.Context(), f)
	if err != nil {
		s.logger.Error("list catalog", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *libraryServer) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	artifact := chi.URLParam(r, "artifact")
	version := chi.URLParam(r, "version")
	if err := liberrors.ValidateCoordinate(group, artifact, version); err != nil {
		writeError(w, http.StatusBadRequest, liberrors.UserMessage(err))
		return
	}

	d, err := library.ReadDescriptor(s.layout.DescriptorPath(group, artifact, version))
	switch {
	case liberrors.Is(err, liberrors.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "library not mirrored")
	case err != nil:
		s.logger.Error("read descriptor", "group", group, "artifact", artifact, "version", version, "error", err)
		writeError(w, http.StatusInternalServerError, "descriptor unreadable")
	default:
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *libraryServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
