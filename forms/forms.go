// Package forms validates user input before it reaches the store. Each form
// trims its fields, checks presence and length and answers with a Notice
// suitable for showing to the user.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kasilami/kasilami/models"
)

// Field limits, counted in characters.
const (
	MaxDisplayName     = 50
	MaxKasiName        = 100
	MaxKasiDescription = 500
	MaxPostContent     = 2000
	MaxCommentContent  = 2000
)

// Notice is a validation failure phrased for the user.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n *Notice) Error() string {
	return n.Title + ": " + n.Description
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// KasiForm is the add-kasi form.
type KasiForm struct {
	Name        string `json:"name" validate:"required,max=100" label:"Name"`
	Description string `json:"description" validate:"required,max=500" label:"Description"`
}

// Validate returns the insert payload or a *Notice.
func (f KasiForm) Validate() (models.NewKasi, error) {
	f.Name = models.CleanKasiName(plainText(f.Name))
	f.Description = plainText(f.Description)
	if err := check(&f, "Please fill in both the kasi name and description."); err != nil {
		return models.NewKasi{}, err
	}
	return models.NewKasi{Name: f.Name, Description: f.Description}, nil
}

// PostForm is the new-post form shown on a section page.
type PostForm struct {
	DisplayName string `json:"display_name" validate:"required,max=50" label:"Display Name"`
	Kasi        string `json:"kasi" validate:"required,max=100" label:"Kasi"`
	Content     string `json:"content" validate:"required,max=2000" label:"Post"`
	Section     string `json:"section" validate:"required,section" label:"Section"`
}

func (f PostForm) Validate() (models.NewPost, error) {
	f.DisplayName = plainText(f.DisplayName)
	f.Kasi = models.CleanKasiName(plainText(f.Kasi))
	f.Content = plainText(f.Content)
	f.Section = strings.ToLower(strings.TrimSpace(f.Section))
	if err := check(&f, "Please fill in all fields before posting."); err != nil {
		return models.NewPost{}, err
	}
	return models.NewPost{
		DisplayName: f.DisplayName,
		Kasi:        f.Kasi,
		Content:     f.Content,
		Section:     models.Section(f.Section),
	}, nil
}

// CommentForm is the reply box under a post. PostID comes from the route.
type CommentForm struct {
	PostID      string `json:"-" validate:"required" label:"Post"`
	DisplayName string `json:"display_name" validate:"required,max=50" label:"Display Name"`
	Content     string `json:"content" validate:"required,max=2000" label:"Comment"`
}

func (f CommentForm) Validate() (models.NewComment, error) {
	f.PostID = strings.TrimSpace(f.PostID)
	f.DisplayName = plainText(f.DisplayName)
	f.Content = plainText(f.Content)
	if err := check(&f, "Please enter your name and comment."); err != nil {
		return models.NewComment{}, err
	}
	return models.NewComment{
		PostID:      f.PostID,
		DisplayName: f.DisplayName,
		Content:     f.Content,
	}, nil
}

func init() {
	_ = validate.RegisterValidation("section", func(fl validator.FieldLevel) bool {
		return models.Section(fl.Field().String()).Valid()
	})
}

// check runs the struct tags and turns the first failure into a Notice.
func check(form any, missingText string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	// report missing fields before anything else
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return missing(missingText)
		}
	}
	fe := fieldErrs[0]
	label := labelOf(form, fe.StructField())
	switch fe.Tag() {
	case "max":
		return &Notice{
			Title:       label + " Too Long",
			Description: fmt.Sprintf("%s must be %s characters or less.", label, fe.Param()),
		}
	case "section":
		return &Notice{
			Title:       "Unknown Section",
			Description: "Section must be one of events, businesses, news or chat.",
		}
	default:
		return &Notice{Title: "Invalid " + label, Description: fe.Error()}
	}
}

func missing(description string) *Notice {
	return &Notice{Title: "Missing Information", Description: description}
}
