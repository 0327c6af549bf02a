package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasilami/kasilami/forum"
	"github.com/kasilami/kasilami/utils"
)

// DiagnosticsController backs the connection test page.
type DiagnosticsController struct {
	svc *forum.Service
}

func NewDiagnosticsController(svc *forum.Service) *DiagnosticsController {
	return &DiagnosticsController{svc: svc}
}

// Run executes the backend checks. The page renders each result, so a failed
// check is still a 200 with code 50030.
func (d *DiagnosticsController) Run(ctx *gin.Context) {
	checks := d.svc.Diagnose(ctx.Request.Context())
	if !forum.Healthy(checks) {
		utils.Respond(ctx, http.StatusOK, 50030, "backend checks failed", gin.H{"checks": checks})
		return
	}
	utils.Success(ctx, gin.H{"checks": checks})
}
