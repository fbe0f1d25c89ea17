// Package response renders the JSON envelope shared by every endpoint:
// {success, data, error, meta}.
package response

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/logger"
)

// Response is the envelope written by every handler.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the client-facing part of an AppError.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Kind    apperrors.Kind         `json:"kind"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

// Meta describes one page of a listing. Total is always present so an empty
// listing reports zero rather than omitting the count.
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes the page count for total items split into perPage pages.
func NewMeta(page, perPage int, total int64) *Meta {
	meta := &Meta{Page: page, PerPage: perPage, Total: int(total)}
	if perPage > 0 && total > 0 {
		meta.TotalPages = int((total-1)/int64(perPage)) + 1
	}
	return meta
}

// Success writes data with the given status.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// SuccessWithMeta writes data together with its pagination block.
func SuccessWithMeta(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, Response{Success: true, Data: data, Meta: meta})
}

// Page writes one page of a listing with status 200.
func Page(c *gin.Context, items any, page, perPage int, total int64) {
	SuccessWithMeta(c, http.StatusOK, items, NewMeta(page, perPage, total))
}

// Error renders err. Anything that is not a client-facing AppError becomes an
// opaque 500; the cause is logged with the request fields and attached to the
// gin context, never written to the body.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = apperrors.ErrInternalServer
	}

	appErr := apperrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if appErr.Kind == apperrors.KindInternal {
		_ = c.Error(err)
		ctx := context.Background()
		if c.Request != nil {
			ctx = c.Request.Context()
		}
		logger.FromContext(ctx, logger.WithModule("http")).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		appErr = apperrors.ErrInternalServer
		status = appErr.StatusCode
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Kind:    appErr.Kind,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		},
	})
}
