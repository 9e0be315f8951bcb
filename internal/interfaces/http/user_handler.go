package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
)

// UserHandler administración de usuarios y solicitudes de acceso (solo admin).
// Los procedimientos verifican además el rol del actor en la base.
type UserHandler struct {
	uc *usecase.UserAdminUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserAdminUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListUsers(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateRoles godoc
// @Summary      Reemplazar roles de un usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.UpdateRolesRequest  true  "Roles"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *fiber.Ctx) error {
	var in dto.UpdateRolesRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateRoles(c.UserContext(), GetUserID(c), c.Params("id"), in.Roles)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAccessRequests godoc
// @Summary      Solicitudes de acceso pendientes
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AccessRequestResponse
// @Router       /api/access-requests [get]
func (h *UserHandler) ListAccessRequests(c *fiber.Ctx) error {
	out, err := h.uc.ListAccessRequests(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud de acceso
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.ApproveAccessRequest  true  "Roles a otorgar"
// @Success      201   {object}  dto.UserResponse
// @Router       /api/access-requests/{id}/approve [post]
func (h *UserHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveAccessRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ApproveAccessRequest(c.UserContext(), GetUserID(c), c.Params("id"), in.Roles)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reject godoc
// @Summary      Rechazar solicitud de acceso
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.RejectAccessRequest  false  "Motivo"
// @Success      204
// @Router       /api/access-requests/{id}/reject [post]
func (h *UserHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectAccessRequest
	if len(c.Body()) > 0 {
		if ok, err := bindAndValidate(c, &in); !ok {
			return err
		}
	}
	if err := h.uc.RejectAccessRequest(c.UserContext(), GetUserID(c), c.Params("id"), in.Reason); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
