package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/controllers/wire"
	"github.com/Agrid-Dev/thermocomfort/internal/ports"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

type Server struct {
	svc      ports.ZoneService
	srv      *http.Server
	deviceID string
	log      zerolog.Logger
}

// New returns a runnable server.
func New(svc ports.ZoneService, addr string, deviceID string, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{svc: svc, deviceID: deviceID, log: log}

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)

	// Write: one endpoint per variable
	mux.HandleFunc("POST /v1/air_temperature", s.handlePostAirTemperature)
	mux.HandleFunc("POST /v1/mean_radiant_temperature", s.handlePostMeanRadiantTemperature)
	mux.HandleFunc("POST /v1/air_velocity", s.handlePostAirVelocity)
	mux.HandleFunc("POST /v1/relative_humidity", s.handlePostRelativeHumidity)
	mux.HandleFunc("POST /v1/vapor_pressure", s.handlePostVaporPressure)
	mux.HandleFunc("POST /v1/clothing", s.handlePostClothing)
	mux.HandleFunc("POST /v1/metabolic_rate", s.handlePostMetabolicRate)
	mux.HandleFunc("POST /v1/activity", s.handlePostActivity)
	mux.HandleFunc("POST /v1/external_work", s.handlePostExternalWork)

	// Stateless evaluation
	mux.HandleFunc("POST /v1/comfort", s.handlePostComfort)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http controller listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondSnapshot(w)
}

func (s *Server) handlePostAirTemperature(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v float64) error {
		s.svc.SetAirTemperature(v)
		return nil
	})
}

func (s *Server) handlePostMeanRadiantTemperature(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v float64) error {
		s.svc.SetMeanRadiantTemperature(v)
		return nil
	})
}

func (s *Server) handlePostAirVelocity(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetAirVelocity)
}

func (s *Server) handlePostRelativeHumidity(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetRelativeHumidity)
}

func (s *Server) handlePostVaporPressure(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetVaporPressure)
}

func (s *Server) handlePostClothing(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetClothing)
}

func (s *Server) handlePostMetabolicRate(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetMetabolicRate)
}

func (s *Server) handlePostActivity(w http.ResponseWriter, r *http.Request) {
	// body: {"value": "seated"}
	postValue(s, w, r, func(v string) error {
		a, err := zone.ParseActivity(v)
		if err != nil {
			return err
		}
		return s.svc.SetActivity(a)
	})
}

func (s *Server) handlePostExternalWork(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v float64) error {
		s.svc.SetExternalWork(v)
		return nil
	})
}

func (s *Server) handlePostComfort(w http.ResponseWriter, r *http.Request) {
	var req wire.Inputs
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if field := req.Missing(); field != "" {
		writeErr(w, http.StatusBadRequest, "missing field '"+field+"'")
		return
	}

	ev, err := req.Evaluate()
	if err != nil {
		if errors.Is(err, comfort.ErrInvalidInput) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, wire.NewComfort(ev))
}

// ---- generic helpers ----
func (s *Server) respondSnapshot(w http.ResponseWriter) {
	snap, ev, err := s.svc.State()
	dto := wire.NewSnapshot(s.deviceID, snap).WithComfort(ev, err)
	writeJSON(w, http.StatusOK, dto)
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected write")
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondSnapshot(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
