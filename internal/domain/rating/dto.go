package rating

import "time"

type CreateRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type Response struct {
	ID           string `json:"id"`
	VendorID     string `json:"vendor_id"`
	UserID       string `json:"user_id"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (r *Rating) ToResponse() Response {
	return Response{
		ID:           r.ID.String(),
		VendorID:     r.VendorID.String(),
		UserID:       r.UserID.String(),
		ReviewerName: r.ReviewerName,
		Rating:       r.Score,
		Comment:      r.Comment.String,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

// ListResponse is a page of ratings plus the vendor summary.
type ListResponse struct {
	Summary *Summary   `json:"summary"`
	Items   []Response `json:"items"`
}
