package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/filter"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/symbols"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
	"github.com/komsit37/yqdash/pkg/yqdash/yahoo"
)

const dateLayout = "2006-01-02"

// Handler serves the query API. Each client gets a session identified by a
// cookie so repeated reads are memoized per client.
type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	cookie   string
	logger   *logger.Logger
}

func NewHandler(c *catalog.Catalog, m *session.Manager, cookieName string, l *logger.Logger) *Handler {
	if l == nil {
		l = logger.Nop()
	}
	return &Handler{catalog: c, sessions: m, cookie: cookieName, logger: l.With(logger.String("component", "api"))}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	api := e.Group("/api")
	api.GET("/endpoints", h.listEndpoints)
	api.GET("/query/:endpoint", h.query)
	api.GET("/modules", h.modules)
	api.GET("/history", h.history)
}

// HandleQuery carries the data handle parameters every data route accepts.
// It is exported so echo's binder can reach it when embedded.
type HandleQuery struct {
	Symbols      string `query:"symbols" validate:"required"`
	Formatted    bool   `query:"formatted"`
	Asynchronous bool   `query:"asynchronous"`
	Username     string `query:"username"`
	Password     string `query:"password"`
}

func (r HandleQuery) options() types.Options {
	return types.Options{
		Formatted:    r.Formatted,
		Asynchronous: r.Asynchronous,
		Username:     r.Username,
		Password:     r.Password,
	}
}

type endpointsRequest struct {
	Category string `query:"category" validate:"omitempty,oneof=profile financial_statement fund premium market aggregate"`
	Filter   string `query:"filter"`
}

type queryRequest struct {
	HandleQuery
	Endpoint  string `param:"endpoint" validate:"required"`
	Frequency string `query:"frequency"`
}

type modulesRequest struct {
	HandleQuery
	Modules string `query:"modules"`
	All     bool   `query:"all"`
}

type historyRequest struct {
	HandleQuery
	Period   string `query:"period" default:"ytd"`
	Interval string `query:"interval" default:"1d"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// queryResponse flattens a QueryResult for the UI.
type queryResponse struct {
	Endpoint    string   `json:"endpoint"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	Arity       string   `json:"arity"`
	Symbols     []string `json:"symbols"`
	Shape       string   `json:"shape"`
	Code        string   `json:"code"`
	Data        any      `json:"data"`
}

func newQueryResponse(res types.QueryResult) queryResponse {
	return queryResponse{
		Endpoint:    res.Endpoint.ID,
		DisplayName: res.Endpoint.DisplayName,
		Category:    res.Endpoint.Category.String(),
		Arity:       res.Endpoint.Arity.String(),
		Symbols:     res.Symbols,
		Shape:       res.Shape.String(),
		Code:        res.Code,
		Data:        res.Data,
	}
}

func (h *Handler) health(c echo.Context) error {
	return successResponse(c, map[string]any{"sessions": h.sessions.Len()})
}

func (h *Handler) listEndpoints(c echo.Context) error {
	req := new(endpointsRequest)
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	var cats []types.Category
	if req.Category != "" {
		cat, err := types.ParseCategory(req.Category)
		if err != nil {
			return badRequestResponse(c, fieldError("Category", "ERR_ONEOF", err.Error()))
		}
		cats = append(cats, cat)
	}
	f, err := filter.Parse(req.Filter)
	if err != nil {
		return badRequestResponse(c, fieldError("Filter", "ERR_FILTER", err.Error()))
	}
	return successResponse(c, filter.Endpoints(f, h.catalog.List(cats...)))
}

func (h *Handler) query(c echo.Context) error {
	req := new(queryRequest)
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	var args []any
	if req.Frequency != "" {
		code, err := dispatch.FrequencyCode(req.Frequency)
		if err != nil {
			return badRequestResponse(c, fieldError("Frequency", "ERR_ONEOF", err.Error()))
		}
		args = append(args, code)
	}
	return h.invoke(c, req.HandleQuery, req.Endpoint, args...)
}

func (h *Handler) modules(c echo.Context) error {
	req := new(modulesRequest)
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	if req.All {
		return h.invoke(c, req.HandleQuery, "all_modules")
	}
	mods := splitList(req.Modules)
	if len(mods) == 0 {
		return badRequestResponse(c, fieldError("Modules", "ERR_REQUIRED", "Modules is required unless all is set"))
	}
	for _, m := range mods {
		if !yahoo.IsModule(m) {
			return badRequestResponse(c, []ValidationError{{
				Code:    "ERR_ONEOF",
				Field:   "Modules",
				Message: "unknown module " + m,
				Params:  map[string]any{"options": yahoo.Modules},
			}})
		}
	}
	return h.invoke(c, req.HandleQuery, "get_modules", mods)
}

func (h *Handler) history(c echo.Context) error {
	req := new(historyRequest)
	if errs := bindRequest(c, req); errs != nil {
		return badRequestResponse(c, errs)
	}
	if !types.ValidInterval(req.Interval) {
		return badRequestResponse(c, fieldError("Interval", "ERR_ONEOF", "Interval must be one of: "+strings.Join(types.HistoryIntervals, ", ")))
	}
	start, end := parseDate(req.Start), parseDate(req.End)
	if start == nil && end == nil && !types.ValidPeriod(req.Period) {
		return badRequestResponse(c, fieldError("Period", "ERR_ONEOF", "Period must be one of: "+strings.Join(types.HistoryPeriods, ", ")))
	}
	hr := dispatch.BuildHistoryRequest(req.Period, req.Interval, start, end)
	return h.invoke(c, req.HandleQuery, "history", hr)
}

// invoke runs one read through the caller's session.
func (h *Handler) invoke(c echo.Context, hr HandleQuery, id string, args ...any) error {
	syms := symbols.Parse(hr.Symbols)
	if len(syms) == 0 {
		return badRequestResponse(c, fieldError("Symbols", "ERR_REQUIRED", "Symbols is required"))
	}
	res, err := h.session(c).Query(c.Request().Context(), syms, hr.options(), id, args...)
	if err != nil {
		return appErrorResponse(c, err)
	}
	return successResponse(c, newQueryResponse(res))
}

// session returns the caller's session, issuing a cookie for new ones.
func (h *Handler) session(c echo.Context) *session.Session {
	var id string
	if ck, err := c.Cookie(h.cookie); err == nil {
		id = ck.Value
	}
	s, created := h.sessions.Get(id)
	if created {
		c.SetCookie(&http.Cookie{
			Name:     h.cookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
