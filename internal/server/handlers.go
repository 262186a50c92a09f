package server

import (
	"encoding/json"
	"net/http"

	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

type hashRequest struct {
	Hash string `json:"hash"`
}

type viewRequest struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Zoom *float64 `json:"zoom"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var partial params.Params
	if err := decode(w, r, &partial); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.do(func() { s.control.Merge(partial) }))
}

func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.do(func() { s.location.SetHash(req.Hash) }))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Lat == nil || req.Lng == nil || req.Zoom == nil {
		writeError(w, http.StatusUnprocessableEntity,
			errors.New("E141").WithExample(`{"lat": 55.68, "lng": 12.57, "zoom": 6}`))
		return
	}

	snap := s.do(func() {
		s.view.SetView(mapview.LatLng{Lat: *req.Lat, Lng: *req.Lng}, *req.Zoom)
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moved := false
		snap := s.do(func() {
			if delta < 0 {
				moved = s.location.Back()
			} else {
				moved = s.location.Forward()
			}
		})
		if !moved {
			writeJSON(w, http.StatusConflict, snap)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) *errors.Error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("E140").Wrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(err.FormatJSON()))
}
