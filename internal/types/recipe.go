package types

import (
	"encoding/json"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Op selects which validation contract a recipe write follows.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

// ImageInput is either a data URI (JSON bodies) or an uploaded file
// (multipart bodies).
type ImageInput struct {
	DataURI string
	File    *multipart.FileHeader
}

func (i *ImageInput) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &i.DataURI)
}

func (i *ImageInput) empty() bool {
	return i == nil || (i.File == nil && strings.TrimSpace(i.DataURI) == "")
}

type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of POST and PATCH /recipes/. Optional
// scalar fields are pointers so PATCH can tell "absent" from "zero".
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
	Image       *ImageInput        `json:"image"`
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
}

// Validate checks the request against the rules of op. Ingredient and tag
// existence is checked later against the database.
func (r *RecipeWriteRequest) Validate(op Op) error {
	errs := FieldErrors{}

	switch {
	case r.Ingredients == nil:
		errs.Add("ingredients", MsgRequired)
	case len(r.Ingredients) == 0:
		errs.Add("ingredients", "Add at least one ingredient.")
	default:
		for _, ing := range r.Ingredients {
			if ing.ID == 0 {
				errs.Add("ingredients", "Ingredient id is required.")
			}
			if ing.Amount < 1 {
				errs.Add("ingredients", "Ingredient amount must be at least 1.")
			}
		}
	}

	switch {
	case r.Tags == nil:
		errs.Add("tags", MsgRequired)
	case len(r.Tags) == 0:
		errs.Add("tags", "Add at least one tag.")
	default:
		seen := make(map[uint]struct{}, len(r.Tags))
		for _, id := range r.Tags {
			if _, dup := seen[id]; dup {
				errs.Add("tags", "Tags must not repeat.")
				break
			}
			seen[id] = struct{}{}
		}
	}

	if r.Name == nil {
		if op == OpCreate {
			errs.Add("name", MsgRequired)
		}
	} else if strings.TrimSpace(*r.Name) == "" {
		errs.Add("name", MsgBlank)
	} else if utf8.RuneCountInString(*r.Name) > models.MaxRecipeNameLength {
		errs.Add("name", "Ensure this field has no more than 200 characters.")
	}

	if r.Text == nil {
		if op == OpCreate {
			errs.Add("text", MsgRequired)
		}
	} else if strings.TrimSpace(*r.Text) == "" {
		errs.Add("text", MsgBlank)
	}

	if r.CookingTime == nil {
		if op == OpCreate {
			errs.Add("cooking_time", MsgRequired)
		}
	} else if *r.CookingTime < 1 {
		errs.Add("cooking_time", "Cooking time must be at least 1 minute.")
	}

	if r.Image.empty() {
		if op == OpCreate || r.Image != nil {
			errs.Add("image", MsgRequired)
		}
	}

	return errs.Err()
}
