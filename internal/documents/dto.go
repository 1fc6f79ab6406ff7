package documents

// updateRequest is the JSON body of PUT /api/documents/:id. All fields are
// optional; absent fields are left untouched.
type updateRequest struct {
	Name       *string   `json:"name"`
	Category   *string   `json:"category"`
	Tags       *[]string `json:"tags"`
	Metadata   *Metadata `json:"metadata"`
	IsArchived *bool     `json:"isArchived"`
	IsFavorite *bool     `json:"isFavorite"`
}

func (req *updateRequest) toUpdate() Update {
	upd := Update{
		Name:       req.Name,
		Tags:       req.Tags,
		Metadata:   req.Metadata,
		IsArchived: req.IsArchived,
		IsFavorite: req.IsFavorite,
	}
	if req.Category != nil {
		c := ParseCategory(*req.Category)
		upd.Category = &c
	}
	return upd
}
