package bafhkbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brutella/hap/log"
	"github.com/go-chi/chi/v5"
)

// FanStatus is what the status endpoint reports per accessory
type FanStatus struct {
	Name         string   `json:"name"`
	DeviceID     string   `json:"deviceId"`
	Model        string   `json:"model"`
	AccessoryID  uint64   `json:"accessoryId"`
	State        string   `json:"state"`
	Capabilities []string `json:"capabilities"`
}

// Status reports the accessory for the status endpoint
func (b *BigAssFan) Status() FanStatus {
	d := b.Description()
	c := b.Capabilities()
	if c == nil {
		c = []string{}
	}
	return FanStatus{
		Name:         d.Name(),
		DeviceID:     d.DeviceID(),
		Model:        d.Model(),
		AccessoryID:  b.A.Id,
		State:        b.State().String(),
		Capabilities: c,
	}
}

// StatusRouter serves read-only accessory status
func StatusRouter(p *Platform) http.Handler {
	r := chi.NewRouter()

	r.Get("/fans", func(w http.ResponseWriter, r *http.Request) {
		fans := p.Fans()
		out := make([]FanStatus, 0, len(fans))
		for _, f := range fans {
			out = append(out, f.Status())
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/fans/{id}", func(w http.ResponseWriter, r *http.Request) {
		f, ok := p.Fan(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "unknown device"})
			return
		}
		writeJSON(w, http.StatusOK, f.Status())
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info.Printf("status: unable to encode response: %s", err.Error())
	}
}

// StatusServer serves StatusRouter on addr until ctx is canceled
func StatusServer(ctx context.Context, addr string, p *Platform) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           StatusRouter(p),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownctx); err != nil {
			log.Info.Println(err.Error())
		}
	}()

	log.Info.Printf("status listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Info.Println(err.Error())
	}
}
