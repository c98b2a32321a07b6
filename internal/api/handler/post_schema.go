package handler

import (
	"time"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// exhibitResponse is how catalog posts are presented to visitors.
type exhibitResponse struct {
	ID          string         `json:"_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []domain.Image `json:"images"`
	Image       *string        `json:"image"`
	User        string         `json:"user"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toExhibit(p *domain.Post) exhibitResponse {
	images := p.Images
	if images == nil {
		images = []domain.Image{}
	}
	var first *string
	if len(images) > 0 && images[0].URL != "" {
		url := images[0].URL
		first = &url
	}
	return exhibitResponse{
		ID:          p.ID,
		Name:        p.Title,
		Description: p.Content,
		Images:      images,
		Image:       first,
		User:        p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type exhibitPageResponse struct {
	Exhibits []exhibitResponse `json:"exhibits"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type exhibitEnvelope struct {
	Message string          `json:"message,omitempty"`
	Exhibit exhibitResponse `json:"exhibit"`
}
