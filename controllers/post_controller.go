package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kasilami/kasilami/forms"
	"github.com/kasilami/kasilami/forum"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/utils"
)

// PostController serves posts and their comments.
type PostController struct {
	svc *forum.Service
}

func NewPostController(svc *forum.Service) *PostController {
	return &PostController{svc: svc}
}

// ListPosts returns posts newest first, filtered by ?kasi= and ?section=.
func (p *PostController) ListPosts(ctx *gin.Context) {
	p.listPosts(ctx, ctx.Query("kasi"))
}

// ListKasiPosts is ListPosts scoped by the :name path segment.
func (p *PostController) ListKasiPosts(ctx *gin.Context) {
	p.listPosts(ctx, ctx.Param("name"))
}

func (p *PostController) listPosts(ctx *gin.Context, kasi string) {
	section := models.Section(strings.ToLower(strings.TrimSpace(ctx.Query("section"))))
	if section != "" && !section.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40020, "unknown section")
		return
	}
	posts, err := p.svc.Posts(ctx.Request.Context(), kasi, section)
	if err != nil {
		respondBackend(ctx, err, 0, "", 50020, "failed to load posts")
		return
	}
	utils.Success(ctx, gin.H{"posts": posts})
}

// GetPost returns one post with its comment count.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.svc.Post(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondBackend(ctx, err, 40402, "post not found", 50021, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost publishes a post into a kasi section.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var form forms.PostForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	in, err := form.Validate()
	if err != nil {
		respondInvalid(ctx, 40022, err)
		return
	}

	post, err := p.svc.CreatePost(ctx.Request.Context(), in)
	if err != nil {
		respondBackend(ctx, err, 40401, "kasi not found", 50022, "failed to create post")
		return
	}
	utils.Created(ctx, gin.H{"post": post})
}

// ListComments returns the comments of a post, oldest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	comments, err := p.svc.Comments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondBackend(ctx, err, 0, "", 50023, "failed to load comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// CreateComment adds a comment to the post named in the path.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var form forms.CommentForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}
	form.PostID = ctx.Param("id")
	in, err := form.Validate()
	if err != nil {
		respondInvalid(ctx, 40024, err)
		return
	}

	comment, err := p.svc.CreateComment(ctx.Request.Context(), in)
	if err != nil {
		respondBackend(ctx, err, 40402, "post not found", 50024, "failed to create comment")
		return
	}
	utils.Created(ctx, gin.H{"comment": comment})
}
