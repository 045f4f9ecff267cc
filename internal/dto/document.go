package dto

// AddDocumentRequest records metadata for one application document.
type AddDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required,min=2,max=60"`
	DocumentName string `json:"document_name" validate:"required,min=1,max=200"`
	FileURL      string `json:"file_url" validate:"required,url"`
}

// ReviewDocumentRequest sets the staff verdict on a document.
type ReviewDocumentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending verified rejected"`
}

// AddGalleryImageRequest adds one image record to the public gallery.
type AddGalleryImageRequest struct {
	Alt       string `json:"alt" validate:"required,min=1,max=200"`
	SortOrder int    `json:"sort_order" validate:"min=0"`
}
