package api

import (
	"net/http"
	"strconv"
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/directory"
	"medstock/m/internal/geo"
)

func (h *Handler) searchPharmacies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := directory.Query{Drug: strings.TrimSpace(q.Get("drug"))}

	if q.Get("lat") != "" || q.Get("lng") != "" {
		point, ok := parsePoint(q.Get("lat"), q.Get("lng"))
		if !ok {
			respondError(w, http.StatusBadRequest, "lat and lng must both be valid numbers")
			return
		}
		query.Near = &point
	}
	if raw := q.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			respondError(w, http.StatusBadRequest, "radius_km must be a non-negative number")
			return
		}
		query.RadiusKm = radius
	}

	flags := map[string]*bool{
		"open_now":      &query.OpenNow,
		"parking":       &query.Amenities.Parking,
		"insurance":     &query.Amenities.Insurance,
		"delivery":      &query.Amenities.Delivery,
		"drive_through": &query.Amenities.DriveThrough,
		"open_24_hours": &query.Amenities.Open24Hours,
	}
	for name, dst := range flags {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, name+" must be a boolean")
			return
		}
		*dst = v
	}

	results, err := h.svc.Directory.Search(r.Context(), query)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if results == nil {
		results = []directory.Result{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) searchDrugs(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.svc.Directory.Drugs(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, drugs)
}

// Geo

func (h *Handler) geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("q"))
	if address == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	result, err := h.svc.Geocoder.Search(r.Context(), address)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) mapURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	point, ok := parsePoint(q.Get("lat"), q.Get("lng"))
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lng must both be valid numbers")
		return
	}
	zoom := 0
	if raw := q.Get("zoom"); raw != "" {
		z, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "zoom must be an integer")
			return
		}
		zoom = z
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": geo.StaticMapURL(point, zoom)})
}

func parsePoint(latRaw, lngRaw string) (domain.Point, bool) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.Point{}, false
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return domain.Point{}, false
	}
	return domain.Point{Latitude: lat, Longitude: lng}, true
}
