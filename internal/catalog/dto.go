// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"
)

type CreateProductRequest struct {
	Title        string  `json:"title"         validate:"required,min=1,max=200"`
	Description  string  `json:"description"   validate:"max=5000"`
	Price        int64   `json:"price"         validate:"required,gt=0"`
	File         string  `json:"file"          validate:"required,min=1,max=255"`
	PreviewImage *string `json:"preview_image" validate:"omitempty,max=255"`
}

type UpdateProductRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64  `json:"price,omitempty"       validate:"omitempty,gt=0"`
}

// ProductResponse is the public view; the deliverable filename is only
// exposed through entitlements.
type ProductResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	PreviewImage *string `json:"preview_image,omitempty"`
}

type AdminProductResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	File         string    `json:"file"`
	PreviewImage *string   `json:"preview_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		PreviewImage: p.PreviewImage,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(&p))
	}
	return responses
}

func ToAdminProductResponse(p *Product) AdminProductResponse {
	return AdminProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		File:         p.File,
		PreviewImage: p.PreviewImage,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
