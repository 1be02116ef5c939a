package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/pkg/auth"
	md "github.com/Astemirdum/library-circulation/pkg/middleware"
	"github.com/Astemirdum/library-circulation/pkg/validate"
	_ "github.com/Astemirdum/library-circulation/swagger"
)

type Handler struct {
	librarySvc LibraryService
	tokens     md.TokenParser
	log        *zap.Logger
}

func New(librarySvc LibraryService, tokens md.TokenParser, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		tokens:     tokens,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	h.routes(api)
	return e
}

func (h *Handler) routes(api *echo.Group) {
	var (
		staff = md.RequireRole(auth.RoleAdmin, auth.RoleLibrarian)
		admin = md.RequireRole(auth.RoleAdmin)
	)

	api.POST("/auth/login", h.Login)
	api.POST("/auth/register-reader", h.RegisterReader)
	api.GET("/reader-categories", h.ListCategories)

	api = api.Group("", md.JwtAuthentication(h.tokens))
	api.GET("/auth/me", h.Me)

	api.POST("/reader-categories", h.CreateCategory, admin)
	api.PUT("/reader-categories/:id", h.UpdateCategory, admin)
	api.DELETE("/reader-categories/:id", h.DeleteCategory, admin)

	api.GET("/readers", h.ListReaders, staff)
	api.GET("/readers/:id", h.GetReader)
	api.PUT("/readers/:id", h.UpdateReader, staff)
	api.DELETE("/readers/:id", h.DeleteReader, admin)

	api.GET("/publishers", h.ListPublishers, staff)
	api.POST("/publishers", h.CreatePublisher, staff)
	api.PUT("/publishers/:id", h.UpdatePublisher, staff)
	api.DELETE("/publishers/:id", h.DeletePublisher, admin)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook, staff)
	api.PUT("/books/:id", h.UpdateBook, staff)
	api.DELETE("/books/:id", h.DeleteBook, admin)

	api.GET("/copies", h.ListCopies)
	api.GET("/copies/:id", h.GetCopy)
	api.POST("/copies", h.CreateCopy, staff)
	api.PUT("/copies/:id", h.UpdateCopy, staff)
	api.DELETE("/copies/:id", h.DeleteCopy, admin)

	api.POST("/borrow", h.Borrow)
	api.POST("/return", h.Return)
	api.GET("/borrows", h.ListBorrows)
	api.GET("/fines", h.ListFines)
	api.POST("/fines/:id/pay", h.PayFine)
	api.GET("/payments", h.ListPayments)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type okResponse struct {
	OK bool `json:"ok"`
}

var okBody = okResponse{OK: true}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.Response{Code: errs.CodeValidation, Message: err.Error()})
	}
	return nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}

func queryID(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return &id, nil
}

func identity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return id, nil
}

var statusByKind = map[errs.Kind]int{
	errs.KindValidation:      http.StatusBadRequest,
	errs.KindNotFound:        http.StatusNotFound,
	errs.KindPermission:      http.StatusForbidden,
	errs.KindConflict:        http.StatusConflict,
	errs.KindConsistency:     http.StatusInternalServerError,
	errs.KindUnauthenticated: http.StatusUnauthorized,
}

// fail turns a service error into an HTTP error.
func (h *Handler) fail(err error) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		h.log.Error("internal", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	status, known := statusByKind[e.Kind]
	if !known {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		h.log.Error("consistency", zap.String("code", e.Code), zap.String("message", e.Message))
	}
	return echo.NewHTTPError(status, errs.Response{Code: e.Code, Message: e.Message})
}
