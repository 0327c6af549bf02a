package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasilami/kasilami/forms"
	"github.com/kasilami/kasilami/forum"
	"github.com/kasilami/kasilami/utils"
)

// KasiController lists, shows and adds kasis.
type KasiController struct {
	svc *forum.Service
}

func NewKasiController(svc *forum.Service) *KasiController {
	return &KasiController{svc: svc}
}

// ListKasis returns every kasi ordered by name.
func (k *KasiController) ListKasis(ctx *gin.Context) {
	kasis, err := k.svc.Kasis(ctx.Request.Context())
	if err != nil {
		respondBackend(ctx, err, 0, "", 50010, "failed to load kasis")
		return
	}
	utils.Success(ctx, gin.H{"kasis": kasis})
}

// GetKasi finds a kasi by name in any letter case.
func (k *KasiController) GetKasi(ctx *gin.Context) {
	kasi, err := k.svc.Kasi(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		respondBackend(ctx, err, 40401, "kasi not found", 50011, "failed to load kasi")
		return
	}
	utils.Success(ctx, gin.H{"kasi": kasi})
}

// CreateKasi adds a kasi from the add-kasi form.
func (k *KasiController) CreateKasi(ctx *gin.Context) {
	var form forms.KasiForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	in, err := form.Validate()
	if err != nil {
		respondInvalid(ctx, 40011, err)
		return
	}

	kasi, err := k.svc.CreateKasi(ctx.Request.Context(), in)
	if err != nil {
		// slug collides with an existing kasi
		if _, lookupErr := k.svc.Kasi(ctx.Request.Context(), in.Name); lookupErr == nil {
			utils.Error(ctx, http.StatusConflict, 40910, "kasi already exists")
			return
		}
		respondBackend(ctx, err, 0, "", 50012, "failed to create kasi")
		return
	}
	utils.Created(ctx, gin.H{"kasi": kasi})
}
