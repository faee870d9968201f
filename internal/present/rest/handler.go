package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/present/rest/presenter"
	"github.com/formhive/formhive/internal/service"
	"github.com/formhive/formhive/internal/usecase"
)

type Handler struct {
	user         *usecase.UserUsecase
	form         *usecase.FormUsecase
	structure    *usecase.StructureUsecase
	availability *usecase.AvailabilityUsecase
	submission   *usecase.SubmissionUsecase
	report       *usecase.ReportUsecase
	group        *usecase.GroupUsecase
	auth         *service.AuthService
	signal       *service.SignalService
}

func NewHandler(
	user *usecase.UserUsecase,
	form *usecase.FormUsecase,
	structure *usecase.StructureUsecase,
	availability *usecase.AvailabilityUsecase,
	submission *usecase.SubmissionUsecase,
	report *usecase.ReportUsecase,
	group *usecase.GroupUsecase,
	auth *service.AuthService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		user:         user,
		form:         form,
		structure:    structure,
		availability: availability,
		submission:   submission,
		report:       report,
		group:        group,
		auth:         auth,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	e.POST("/api/auth/register", h.handleRegister)
	e.POST("/api/auth/login", h.handleLogin)
	e.GET("/api/auth/me", h.handleMe, requireAuth)

	e.POST("/api/forms", h.handleCreateForm, requireAuth)
	e.GET("/api/forms/available", h.handleAvailableForms, requireAuth)
	e.GET("/api/forms/submissions", h.handleMySubmissions, requireAuth)
	e.GET("/api/forms/submissions/:id", h.handleGetSubmission, requireAuth)
	e.PUT("/api/forms/submissions/:id", h.handleEditSubmission, requireAuth)
	e.DELETE("/api/forms/submissions/:id", h.handleDeleteSubmission, requireAuth)
	e.GET("/api/forms/:formId/structure", h.handleFormStructure, requireAuth)
	e.POST("/api/forms/:formId/submit", h.handleSubmit, requireAuth)
	e.GET("/api/forms/:formId/submissions", h.handleFormSubmissions, requireAuth)
	e.GET("/api/forms/:formId/report", h.handleReport, requireAuth)
	e.GET("/api/forms/:formId/permissions", h.handleGetPermissions, requireAuth)
	e.POST("/api/forms/:formId/permissions", h.handleAssignPermissions, requireAuth)
	e.DELETE("/api/forms/:formId", h.handleDeleteForm, requireAuth)

	e.POST("/api/groups", h.handleCreateGroup, requireAuth)
	e.GET("/api/groups", h.handleListGroups, requireAuth)
	e.GET("/api/groups/users/search", h.handleSearchUsers, requireAuth)
	e.GET("/api/groups/:groupId", h.handleGetGroup, requireAuth)
	e.PUT("/api/groups/:groupId", h.handleUpdateGroup, requireAuth)
	e.DELETE("/api/groups/:groupId", h.handleDeleteGroup, requireAuth)

	e.GET("/api/realtime", h.handleRealtime, requireAuth)
}

func requesterID(c echo.Context) uint {
	id, _ := c.Request().Context().Value(domain.RequesterIDCtxKey).(uint)
	return id
}

func paramUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func pagination(c echo.Context) (page, size int) {
	page = queryInt(c, "page", 0)
	size = queryInt(c, "size", 10)
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.user.Register(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		return presenter.Error(c, err)
	}

	token, err := h.auth.IssueToken(*user)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, authResponse{
		Token:    token,
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.user.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return presenter.Error(c, err)
	}

	token, err := h.auth.IssueToken(*user)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, authResponse{
		Token:    token,
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	})
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.user.Get(ctx, requesterID(c))
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, echo.Map{
		"id":       user.ID,
		"fullName": user.FullName,
		"email":    user.Email,
	})
}

type createFormRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	GroupID     *uint           `json:"groupId"`
}

func (h *Handler) handleCreateForm(c echo.Context) error {
	ctx := c.Request().Context()

	var req createFormRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Title == "" {
		return presenter.BadRequestMessage(c, "title is required")
	}

	form, err := h.form.Create(ctx, requesterID(c), req.Title, req.Description, req.Schema, req.GroupID)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, form)
}

func (h *Handler) handleDeleteForm(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.form.Delete(ctx, formID, requesterID(c))
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleAvailableForms(c echo.Context) error {
	ctx := c.Request().Context()

	page, size := pagination(c)
	search := c.QueryParam("search")

	result, err := h.availability.ListAvailable(ctx, requesterID(c), page, size, search)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleFormStructure(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	structure, err := h.structure.GetFormStructure(ctx, formID, requesterID(c))
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, structure)
}

type submitRequest struct {
	Data map[string]any `json:"data"`
}

func (h *Handler) handleSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.submission.Submit(ctx, requesterID(c), formID, req.Data)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, result)
}

func (h *Handler) handleFormSubmissions(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	page, size := pagination(c)

	result, err := h.submission.ListByForm(ctx, formID, requesterID(c), page, size)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleReport(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	field := c.QueryParam("field")
	agg := c.QueryParam("agg")
	if field == "" || agg == "" {
		return presenter.BadRequestMessage(c, "field and agg parameters are required")
	}

	var groupBy *string
	if g := c.QueryParam("groupBy"); g != "" {
		groupBy = &g
	}

	rows, err := h.report.Compute(ctx, formID, requesterID(c), field, agg, groupBy)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, rows)
}

func (h *Handler) handleGetPermissions(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	form, err := h.form.Get(ctx, formID)
	if err != nil {
		return presenter.Error(c, err)
	}
	if form.OwnerID != requesterID(c) {
		return presenter.Error(c, domain.ForbiddenError{Reason: "Access Denied"})
	}

	perms, err := h.form.GetPermissions(ctx, formID)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, perms)
}

type assignPermissionsRequest struct {
	Permissions []formhive.PermissionAssignment `json:"permissions"`
}

func (h *Handler) handleAssignPermissions(c echo.Context) error {
	ctx := c.Request().Context()

	formID, err := paramUint(c, "formId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req assignPermissionsRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	form, err := h.form.Get(ctx, formID)
	if err != nil {
		return presenter.Error(c, err)
	}
	if form.OwnerID != requesterID(c) {
		return presenter.Error(c, domain.ForbiddenError{Reason: "Access Denied"})
	}

	if err := h.form.AssignPermissions(ctx, formID, req.Permissions); err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleMySubmissions(c echo.Context) error {
	ctx := c.Request().Context()

	page, size := pagination(c)

	var status *domain.SubmissionStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := domain.SubmissionStatus(raw)
		status = &s
	}

	result, err := h.submission.ListByUser(ctx, requesterID(c), page, size, status)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleGetSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramUint(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	view, err := h.submission.Get(ctx, id, requesterID(c))
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, view)
}

func (h *Handler) handleEditSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramUint(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.submission.Edit(ctx, id, requesterID(c), req.Data)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleDeleteSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramUint(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.submission.Delete(ctx, id, requesterID(c)); err != nil {
		return presenter.Error(c, err)
	}

	return presenter.NoContent(c)
}

type groupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MemberIDs   *[]uint `json:"memberIds"`
}

func (h *Handler) handleCreateGroup(c echo.Context) error {
	ctx := c.Request().Context()

	var req groupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Name == "" {
		return presenter.BadRequestMessage(c, "name is required")
	}

	var memberIDs []uint
	if req.MemberIDs != nil {
		memberIDs = *req.MemberIDs
	}

	group, err := h.group.Create(ctx, requesterID(c), req.Name, req.Description, memberIDs)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, group)
}

func (h *Handler) handleListGroups(c echo.Context) error {
	ctx := c.Request().Context()

	mineOnly := c.QueryParam("owned") == "true"

	groups, err := h.group.ListForUser(ctx, requesterID(c), mineOnly)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, groups)
}

func (h *Handler) handleGetGroup(c echo.Context) error {
	ctx := c.Request().Context()

	groupID, err := paramUint(c, "groupId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	group, err := h.group.Get(ctx, groupID, requesterID(c))
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, group)
}

func (h *Handler) handleUpdateGroup(c echo.Context) error {
	ctx := c.Request().Context()

	groupID, err := paramUint(c, "groupId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var req groupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	var name *string
	if req.Name != "" {
		name = &req.Name
	}

	group, err := h.group.Update(ctx, groupID, requesterID(c), name, req.Description, req.MemberIDs)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, group)
}

func (h *Handler) handleDeleteGroup(c echo.Context) error {
	ctx := c.Request().Context()

	groupID, err := paramUint(c, "groupId")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.group.Delete(ctx, groupID, requesterID(c)); err != nil {
		return presenter.Error(c, err)
	}

	return presenter.NoContent(c)
}

func (h *Handler) handleSearchUsers(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("query")
	if query == "" {
		return presenter.BadRequestMessage(c, "query parameter is required")
	}

	page, size := pagination(c)

	users, total, err := h.group.SearchUsers(ctx, query, page, size)
	if err != nil {
		return presenter.Error(c, err)
	}

	results := make([]echo.Map, 0, len(users))
	for _, user := range users {
		results = append(results, echo.Map{
			"id":       user.ID,
			"fullName": user.FullName,
			"email":    user.Email,
		})
	}

	return presenter.OK(c, echo.Map{
		"users":         results,
		"totalElements": total,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type  string `json:"type"`
	Forms []uint `json:"forms"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// The forwarder and the reader goroutine both send on these channels,
	// so the handler must not close them. Cancellation is the only
	// shutdown signal.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []uint)
	output := make(chan formhive.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Forms:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %v", req.Forms),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
