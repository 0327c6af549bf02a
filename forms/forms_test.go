package forms

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-playground/assert/v2"

	"github.com/kasilami/kasilami/models"
)

func notice(t *testing.T, err error) *Notice {
	t.Helper()
	var n *Notice
	if !errors.As(err, &n) {
		t.Fatalf("expected a notice, got %v", err)
	}
	return n
}

func TestPostFormDisplayNameLength(t *testing.T) {
	form := PostForm{
		DisplayName: strings.Repeat("a", MaxDisplayName),
		Kasi:        "Soweto",
		Content:     "Market day on Saturday",
		Section:     "events",
	}
	in, err := form.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, MaxDisplayName, len(in.DisplayName))
	assert.Equal(t, models.SectionEvents, in.Section)

	form.DisplayName += "a"
	_, err = form.Validate()
	n := notice(t, err)
	assert.Equal(t, "Display Name Too Long", n.Title)
	assert.Equal(t, "Display Name must be 50 characters or less.", n.Description)
}

func TestLengthCountsCharacters(t *testing.T) {
	form := CommentForm{PostID: "p1", DisplayName: strings.Repeat("é", MaxDisplayName), Content: "sharp"}
	_, err := form.Validate()
	assert.Equal(t, nil, err)
}

func TestWhitespaceOnlyIsMissing(t *testing.T) {
	_, err := PostForm{DisplayName: "   ", Kasi: "Soweto", Content: "hi", Section: "chat"}.Validate()
	n := notice(t, err)
	assert.Equal(t, "Missing Information", n.Title)
	assert.Equal(t, "Please fill in all fields before posting.", n.Description)

	_, err = CommentForm{PostID: "p1", DisplayName: "Sipho", Content: "\n\t "}.Validate()
	n = notice(t, err)
	assert.Equal(t, "Missing Information", n.Title)
	assert.Equal(t, "Please enter your name and comment.", n.Description)
}

func TestPostFormTrimsAndSanitizes(t *testing.T) {
	in, err := PostForm{
		DisplayName: "  Lerato ",
		Kasi:        "  kwa   mashu ",
		Content:     " <b>Braai</b> at 5<script>alert(1)</script> ",
		Section:     " News ",
	}.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, "Lerato", in.DisplayName)
	assert.Equal(t, "kwa mashu", in.Kasi)
	assert.Equal(t, "Braai at 5", in.Content)
	assert.Equal(t, models.SectionNews, in.Section)
}

func TestPostFormRejectsUnknownSection(t *testing.T) {
	_, err := PostForm{DisplayName: "Lerato", Kasi: "Soweto", Content: "hi", Section: "sport"}.Validate()
	assert.Equal(t, "Unknown Section", notice(t, err).Title)
}

func TestContentThatSanitizesAwayIsMissing(t *testing.T) {
	_, err := CommentForm{PostID: "p1", DisplayName: "Sipho", Content: "<script>x()</script>"}.Validate()
	assert.Equal(t, "Missing Information", notice(t, err).Title)
}

func TestKasiForm(t *testing.T) {
	in, err := KasiForm{Name: " Langa ", Description: " Oldest township in Cape Town "}.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, "Langa", in.Name)
	assert.Equal(t, "Oldest township in Cape Town", in.Description)

	_, err = KasiForm{Name: "Langa"}.Validate()
	n := notice(t, err)
	assert.Equal(t, "Missing Information", n.Title)
	assert.Equal(t, "Please fill in both the kasi name and description.", n.Description)

	_, err = KasiForm{Name: strings.Repeat("x", MaxKasiName+1), Description: "d"}.Validate()
	assert.Equal(t, "Name Too Long", notice(t, err).Title)

	_, err = KasiForm{Name: "Langa", Description: strings.Repeat("x", MaxKasiDescription+1)}.Validate()
	n = notice(t, err)
	assert.Equal(t, "Description Too Long", n.Title)
	assert.Equal(t, "Description must be 500 characters or less.", n.Description)
}

func TestPunctuationIsStoredAsTyped(t *testing.T) {
	kasi, err := KasiForm{Name: " Mitchell's  Plain ", Description: "Fish & chips on the Strandfontein road"}.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, "Mitchell's Plain", kasi.Name)
	assert.Equal(t, "Fish & chips on the Strandfontein road", kasi.Description)

	name := "O'Brien" + strings.Repeat("x", MaxDisplayName-len("O'Brien"))
	post, err := PostForm{DisplayName: name, Kasi: "Mitchell's Plain", Content: "a & b", Section: "chat"}.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, MaxDisplayName, utf8.RuneCountInString(post.DisplayName))
	assert.Equal(t, "Mitchell's Plain", post.Kasi)
	assert.Equal(t, "a & b", post.Content)
}

func TestLengthMeasuredAfterStrippingTags(t *testing.T) {
	name := "<i>" + strings.Repeat("a", MaxDisplayName) + "</i>"
	in, err := CommentForm{PostID: "p1", DisplayName: name, Content: "hi"}.Validate()
	assert.Equal(t, nil, err)
	assert.Equal(t, strings.Repeat("a", MaxDisplayName), in.DisplayName)
}
