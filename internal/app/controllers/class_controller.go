package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/app/services"
	"github.com/elihudev/elihudroom/internal/middleware"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
)

// ClassController handles class lifecycle and enrollment operations
type ClassController struct {
	classService      services.ClassService
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService, enrollmentService services.EnrollmentService, logger zerolog.Logger) *ClassController {
	return &ClassController{
		classService:      classService,
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// classIDParam parses the :id path parameter
func classIDParam(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid class id")
	}
	return id, nil
}

// CreateClass handles class creation
// @Summary Create a class
// @Description Creates a class owned by the calling teacher. A unique six character join code is allocated automatically.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class information"
// @Success 201 {object} dto.APIResponse{data=dto.ClassResponse} "Class created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a teacher"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	class, err := c.classService.CreateClass(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: class})
}

// ListClasses lists the classes visible to the caller
// @Summary List classes
// @Description Teachers get the classes they own; students get the classes they joined. Classes deleted since enrollment are silently absent.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ClassListResponse} "Visible classes"
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	classes, err := c.classService.ListClasses(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: classes})
}

// GetClass returns one class
// @Summary Get a class
// @Description Returns class details for members. The owner additionally gets the full roster.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse} "Class details"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	classID, err := classIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), middleware.CurrentUser(ctx), classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: class})
}

// UpdateClass patches class metadata
// @Summary Update a class
// @Description Updates nombre and descripcion. Owner only; the join code never changes.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.UpdateClassRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse} "Updated class"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	classID, err := classIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	class, err := c.classService.UpdateClass(ctx.Request.Context(), middleware.CurrentUser(ctx), classID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: class})
}

// DeleteClass removes a class with its posts and enrollments
// @Summary Delete a class
// @Description Deletes the class together with every post and enrollment in it. Owner only.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Class deleted"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	classID, err := classIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.classService.DeleteClass(ctx.Request.Context(), middleware.CurrentUser(ctx), classID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.SuccessResponse{Message: "Class deleted"}})
}

// JoinClass enrolls the caller in the class behind a join code
// @Summary Join a class by code
// @Description Enrolls the calling student in the class whose join code matches. The code is the only credential.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JoinClassRequest true "Join code"
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse} "Joined class"
// @Failure 404 {object} dto.ErrorResponse "No class with that join code"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /classes/join [post]
func (c *ClassController) JoinClass(ctx *gin.Context) {
	var req dto.JoinClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	class, err := c.enrollmentService.JoinClass(ctx.Request.Context(), middleware.CurrentUser(ctx), req.Codigo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: class})
}
