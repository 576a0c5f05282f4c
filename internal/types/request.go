package types

import (
	"github.com/go-playground/validator/v10"
)

// GenerateRequest is the request body for POST /generate-content-strategy.
// Paths may point at local files; the URL is the creator's public profile page.
type GenerateRequest struct {
	PPTPath            string `json:"ppt_path" validate:"required"`
	URL                string `json:"url" validate:"required,url"`
	StyleType          string `json:"style_type" validate:"required"`
	BrandName          string `json:"brand_name" validate:"required"`
	AdditionalInfo     string `json:"additional_info,omitempty"`
	VideoOutlinePath   string `json:"video_outline_path" validate:"required"`
	DownloadImages     bool   `json:"download_images,omitempty"`
	UseLocalInfluencer bool   `json:"use_local_influencer,omitempty"`
}

// GenerateResponse is the terminal response for a pipeline run. Status is always
// set; SpreadsheetURL is present only when persistence succeeded.
type GenerateResponse struct {
	Status             string         `json:"status"`
	SpreadsheetURL     string         `json:"spreadsheet_url,omitempty"`
	Message            string         `json:"message"`
	StyleTypeUsed      string         `json:"style_type_used,omitempty"`
	FinalDirectionUsed string         `json:"final_direction_used,omitempty"`
	DirectionPlan      map[string]any `json:"direction_plan,omitempty"`
	ResourceType       string         `json:"resource_type,omitempty"`
}

// Validate validates the GenerateRequest using the validator.
// Membership of StyleType in the configured set is checked by the pipeline,
// which owns that configuration.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
