package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kasilami/kasilami/forms"
	"github.com/kasilami/kasilami/utils"
)

// respondInvalid answers a form failure with the user-facing notice.
func respondInvalid(ctx *gin.Context, code int, err error) {
	var notice *forms.Notice
	if errors.As(err, &notice) {
		utils.Respond(ctx, http.StatusBadRequest, code, notice.Title, gin.H{"notice": notice})
		return
	}
	utils.Error(ctx, http.StatusBadRequest, code, "invalid request payload")
}

// respondBackend maps a store failure onto the envelope. Missing rows are
// 404s; everything else is logged and reported as a 500.
func respondBackend(ctx *gin.Context, err error, notFoundCode int, notFoundMsg string, code int, msg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, notFoundCode, notFoundMsg)
		return
	}
	utils.Sugar.Errorw(msg, "path", ctx.FullPath(), "error", err)
	utils.Error(ctx, http.StatusInternalServerError, code, msg)
}
