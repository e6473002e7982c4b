package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() models.RecommendRequest {
	return models.RecommendRequest{
		GradeMin:   1,
		GradeMax:   3,
		Areas:      []string{"California"},
		Order:      "relevance",
		GradeFloor: -1,
		GradeCeil:  14,
	}
}

func TestValidateStruct_RecommendRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RecommendRequest)
		field  string
	}{
		{name: "valid", mutate: func(r *models.RecommendRequest) {}},
		{name: "order alias", mutate: func(r *models.RecommendRequest) { r.Order = "Most Popular" }},
		{name: "empty order", mutate: func(r *models.RecommendRequest) { r.Order = "" }},
		{name: "single grade", mutate: func(r *models.RecommendRequest) { r.GradeMin, r.GradeMax = 5, 5 }},
		{name: "min above max", mutate: func(r *models.RecommendRequest) { r.GradeMin, r.GradeMax = 6, 4 }, field: "GradeMin"},
		{name: "below floor", mutate: func(r *models.RecommendRequest) { r.GradeMin = -2 }, field: "GradeMin"},
		{name: "above ceiling", mutate: func(r *models.RecommendRequest) { r.GradeMax = 15 }, field: "GradeMax"},
		{name: "unknown order", mutate: func(r *models.RecommendRequest) { r.Order = "newest" }, field: "Order"},
		{name: "blank area", mutate: func(r *models.RecommendRequest) { r.Areas = []string{""} }, field: "Areas[0]"},
		{name: "negative limit", mutate: func(r *models.RecommendRequest) { r.Limit = -1 }, field: "Limit"},
		{name: "long description", mutate: func(r *models.RecommendRequest) { r.Description = strings.Repeat("a", 2001) }, field: "Description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := ValidateStruct(&req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verr *RequestValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.NotEmpty(t, verr.Fields[0].Message)
		})
	}
}

func TestRequestValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation failed", (&RequestValidationError{}).Error())

	err := &RequestValidationError{Fields: []FieldError{
		{Field: "A", Message: "A is required"},
		{Field: "B", Message: "B is required"},
	}}
	assert.Equal(t, "A is required; B is required", err.Error())
}
