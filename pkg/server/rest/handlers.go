package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/server"
	"lintang/racemap/pkg/server/rest/service"
	"lintang/racemap/pkg/tilesource"
	"lintang/racemap/pkg/util"
	"lintang/racemap/pkg/vehicle"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/paulmach/orb/maptile"
)

const maxTileUploadBytes = 8 << 20

type RacemapService interface {
	LoadRegion(ctx context.Context, lon, lat float64) (service.RegionResult, error)
	PutTile(ctx context.Context, tile maptile.Tile, data []byte) (int, error)
	Roads(ctx context.Context) ([]string, int, error)
	Nearby(ctx context.Context, lon, lat float64, k int) ([]service.NearbyRoad, error)
	Snap(ctx context.Context, lon, lat float64) (service.SnapResult, error)
	VehicleStep(ctx context.Context, ctl vehicle.Controls) (vehicle.State, vehicle.Outcome)
	VehicleReset(ctx context.Context, lon, lat float64) vehicle.State
	VehicleState(ctx context.Context) vehicle.State
}

type RacemapHandler struct {
	svc          RacemapService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func RacemapRouter(r *chi.Mux, svc RacemapService, m *metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &RacemapHandler{svc, m, validate, trans}

	r.Group(func(r chi.Router) {
		r.Route("/api/roads", func(r chi.Router) {
			r.Get("/", handler.roads)
			r.Post("/region", handler.loadRegion)
			r.Post("/tile", handler.putTile)
			r.Get("/nearby", handler.nearby)
		})
		r.Post("/api/snap", handler.snap)
		r.Route("/api/vehicle", func(r chi.Router) {
			r.Get("/", handler.vehicleState)
			r.Post("/step", handler.vehicleStep)
			r.Post("/reset", handler.vehicleReset)
		})
	})
}

func (h *RacemapHandler) validateStruct(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			render.Render(w, r, ErrInvalidRequest(err))
			return false
		}
		render.Render(w, r, ErrValidation(err, translateError(verrs, h.trans)))
		return false
	}
	return true
}

// LocationRequest model info
//
//	@Description	request body berisi satu titik lon/lat
type LocationRequest struct {
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Lat *float64 `json:"lat" validate:"required,gte=-85.05112878,lte=85.05112878"`
}

func (s *LocationRequest) Bind(r *http.Request) error {
	return nil
}

// RegionResponse model info
//
//	@Description	response body hasil load road di sekitar satu titik
type RegionResponse struct {
	Tiles     int `json:"tiles"`
	Failed    int `json:"failed_tiles"`
	Polylines int `json:"polylines"`
}

// loadRegion
//
//	@Summary		load jalan di sekitar satu titik.
//	@Description	fetch vector tiles covering region radius around the point, extract drivable roads and replace the road set.
//	@Tags			roads
//	@Param			body	body	LocationRequest	true	"region center"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/roads/region [post]
//	@Success		200	{object}	RegionResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RacemapHandler) loadRegion(w http.ResponseWriter, r *http.Request) {
	data := &LocationRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, data) {
		return
	}

	res, err := h.svc.LoadRegion(r.Context(), *data.Lon, *data.Lat)
	if err != nil {
		h.promeMetrics.RegionLoadCount.WithLabelValues("error").Inc()
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.RegionLoadCount.WithLabelValues("ok").Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &RegionResponse{Tiles: res.Tiles, Failed: res.Failed, Polylines: res.Polylines})
}

// TileQuery model info
type TileQuery struct {
	Z int `validate:"gte=0,lte=22"`
	X int `validate:"gte=0"`
	Y int `validate:"gte=0"`
}

// TileResponse model info
//
//	@Description	response body hasil decode satu vector tile
type TileResponse struct {
	Tile      string `json:"tile"`
	Polylines int    `json:"polylines"`
}

// putTile
//
//	@Summary		upload satu vector tile.
//	@Description	body is the raw (optionally gzipped) mapbox vector tile for tile z/x/y. Its drivable roads replace the roads of that tile.
//	@Tags			roads
//	@Param			z	query	int	true	"zoom"
//	@Param			x	query	int	true	"tile x"
//	@Param			y	query	int	true	"tile y"
//	@Accept			application/x-protobuf
//	@Produce		application/json
//	@Router			/roads/tile [post]
//	@Success		200	{object}	TileResponse
//	@Failure		400	{object}	ErrResponse
func (h *RacemapHandler) putTile(w http.ResponseWriter, r *http.Request) {
	q, err := parseTileQuery(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, q) {
		return
	}
	if q.X >= 1<<q.Z || q.Y >= 1<<q.Z {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("tile %d/%d/%d out of range", q.Z, q.X, q.Y)))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTileUploadBytes))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	body, err = tilesource.Gunzip(body)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	tile := maptile.New(uint32(q.X), uint32(q.Y), maptile.Zoom(q.Z))
	n, err := h.svc.PutTile(r.Context(), tile, body)
	if err != nil {
		h.promeMetrics.TileDecodeCount.WithLabelValues("error").Inc()
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.TileDecodeCount.WithLabelValues("ok").Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &TileResponse{Tile: fmt.Sprintf("%d/%d/%d", q.Z, q.X, q.Y), Polylines: n})
}

func parseTileQuery(r *http.Request) (*TileQuery, error) {
	q := &TileQuery{}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"z", &q.Z}, {"x", &q.X}, {"y", &q.Y}} {
		v, err := strconv.Atoi(r.URL.Query().Get(p.name))
		if err != nil {
			return nil, fmt.Errorf("query param %s must be an integer", p.name)
		}
		*p.dst = v
	}
	return q, nil
}

// RoadsResponse model info
//
//	@Description	response body berisi semua jalan yang sedang di load, google encoded polyline lat/lon
type RoadsResponse struct {
	Tiles     int      `json:"tiles"`
	Polylines []string `json:"polylines"`
}

// roads
//
//	@Summary		semua jalan yang sedang di load.
//	@Tags			roads
//	@Produce		application/json
//	@Router			/roads [get]
//	@Success		200	{object}	RoadsResponse
//	@Failure		500	{object}	ErrResponse
func (h *RacemapHandler) roads(w http.ResponseWriter, r *http.Request) {
	lines, tiles, err := h.svc.Roads(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &RoadsResponse{Tiles: tiles, Polylines: lines})
}

// NearbyQuery model info
type NearbyQuery struct {
	Lon float64 `validate:"gte=-180,lte=180"`
	Lat float64 `validate:"gte=-85.05112878,lte=85.05112878"`
	K   int     `validate:"gte=1,lte=100"`
}

// NearbyRoadResponse model info
//
//	@Description	satu jalan terdekat
type NearbyRoadResponse struct {
	Index          int     `json:"index"`
	Polyline       string  `json:"polyline"`
	DistanceMeters float64 `json:"distance_meters"`
	NearestLon     float64 `json:"nearest_lon"`
	NearestLat     float64 `json:"nearest_lat"`
}

// NearbyResponse model info
type NearbyResponse struct {
	Roads []NearbyRoadResponse `json:"roads"`
}

// nearby
//
//	@Summary		k jalan terdekat dari satu titik.
//	@Tags			roads
//	@Param			lon	query	number	true	"longitude"
//	@Param			lat	query	number	true	"latitude"
//	@Param			k	query	int		false	"jumlah jalan, default 5"
//	@Produce		application/json
//	@Router			/roads/nearby [get]
//	@Success		200	{object}	NearbyResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *RacemapHandler) nearby(w http.ResponseWriter, r *http.Request) {
	q := &NearbyQuery{K: 5}
	var err error
	if q.Lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64); err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("query param lon must be a number")))
		return
	}
	if q.Lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64); err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("query param lat must be a number")))
		return
	}
	if k := r.URL.Query().Get("k"); k != "" {
		if q.K, err = strconv.Atoi(k); err != nil {
			render.Render(w, r, ErrInvalidRequest(errors.New("query param k must be an integer")))
			return
		}
	}
	if !h.validateStruct(w, r, q) {
		return
	}

	hits, err := h.svc.Nearby(r.Context(), q.Lon, q.Lat, q.K)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	resp := &NearbyResponse{Roads: make([]NearbyRoadResponse, 0, len(hits))}
	for _, hit := range hits {
		resp.Roads = append(resp.Roads, NearbyRoadResponse{
			Index:          hit.Index,
			Polyline:       hit.Polyline,
			DistanceMeters: util.RoundFloat(hit.DistanceMeters, 2),
			NearestLon:     hit.NearestLon,
			NearestLat:     hit.NearestLat,
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// SnapResponse model info
//
//	@Description	response body hasil snap satu titik ke jalan terdekat
type SnapResponse struct {
	Lon          float64 `json:"lon"`
	Lat          float64 `json:"lat"`
	Heading      float64 `json:"heading"`
	OffsetMeters float64 `json:"offset_meters"`
	Snapped      bool    `json:"snapped"`
}

// snap
//
//	@Summary		snap satu titik ke jalan terdekat.
//	@Description	pulls the point toward the nearest loaded road by the configured snap strength. Without roads the point is returned unchanged.
//	@Tags			snap
//	@Param			body	body	LocationRequest	true	"point to snap"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/snap [post]
//	@Success		200	{object}	SnapResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RacemapHandler) snap(w http.ResponseWriter, r *http.Request) {
	data := &LocationRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, data) {
		return
	}

	res, err := h.svc.Snap(r.Context(), *data.Lon, *data.Lat)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.SnapQueryCount.WithLabelValues(strconv.FormatBool(res.Snapped)).Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &SnapResponse{
		Lon:          res.Lon,
		Lat:          res.Lat,
		Heading:      util.RoundFloat(res.HeadingDegrees, 2),
		OffsetMeters: util.RoundFloat(res.OffsetMeters, 2),
		Snapped:      res.Snapped,
	})
}

// ControlsRequest model info
//
//	@Description	input keyboard untuk satu simulation step
type ControlsRequest struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
}

func (s *ControlsRequest) Bind(r *http.Request) error {
	return nil
}

// VehicleResponse model info
//
//	@Description	state kendaraan
type VehicleResponse struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
	Bearing float64 `json:"bearing"`
	Speed   float64 `json:"speed"`
	Cell    string  `json:"h3_cell"`
	Outcome string  `json:"outcome,omitempty"`
}

func NewVehicleResponse(s vehicle.State, outcome string) *VehicleResponse {
	return &VehicleResponse{
		Lon:     s.Lon,
		Lat:     s.Lat,
		X:       s.X,
		Y:       s.Y,
		Z:       s.Z,
		Heading: s.Heading,
		Bearing: util.RoundFloat(geo.HeadingDegrees(cosSin(s.Heading)), 2),
		Speed:   s.Speed,
		Cell:    s.Cell.String(),
		Outcome: outcome,
	}
}

func cosSin(a float64) (float64, float64) {
	return math.Cos(a), math.Sin(a)
}

// vehicleStep
//
//	@Summary		satu simulation step kendaraan.
//	@Tags			vehicle
//	@Param			body	body	ControlsRequest	true	"controls"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/vehicle/step [post]
//	@Success		200	{object}	VehicleResponse
//	@Failure		400	{object}	ErrResponse
func (h *RacemapHandler) vehicleStep(w http.ResponseWriter, r *http.Request) {
	data := &ControlsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	state, outcome := h.svc.VehicleStep(r.Context(), vehicle.Controls{
		Forward:  data.Forward,
		Backward: data.Backward,
		Left:     data.Left,
		Right:    data.Right,
	})
	h.promeMetrics.VehicleStepCount.WithLabelValues(outcome.String()).Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewVehicleResponse(state, outcome.String()))
}

// vehicleReset
//
//	@Summary		pindahkan kendaraan ke satu titik.
//	@Tags			vehicle
//	@Param			body	body	LocationRequest	true	"new position"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/vehicle/reset [post]
//	@Success		200	{object}	VehicleResponse
//	@Failure		400	{object}	ErrResponse
func (h *RacemapHandler) vehicleReset(w http.ResponseWriter, r *http.Request) {
	data := &LocationRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, data) {
		return
	}
	state := h.svc.VehicleReset(r.Context(), *data.Lon, *data.Lat)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewVehicleResponse(state, ""))
}

// vehicleState
//
//	@Summary		state kendaraan saat ini.
//	@Tags			vehicle
//	@Produce		application/json
//	@Router			/vehicle [get]
//	@Success		200	{object}	VehicleResponse
func (h *RacemapHandler) vehicleState(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewVehicleResponse(h.svc.VehicleState(r.Context()), ""))
}

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case server.ErrInternalServerError:
		return http.StatusInternalServerError
	case server.ErrNotFound:
		return http.StatusNotFound
	case server.ErrConflict:
		return http.StatusConflict
	case server.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func translateError(validatorErrs validator.ValidationErrors, trans ut.Translator) (errs []error) {
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
