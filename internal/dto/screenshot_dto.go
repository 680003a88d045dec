package dto

// CreateScreenshotURLRequest is the request body for requesting a screenshot upload URL
type CreateScreenshotURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ScreenshotURLResponse carries a presigned upload URL for a comment screenshot
type ScreenshotURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileKey   string `json:"file_key"`
	FileURL   string `json:"file_url"`
}
