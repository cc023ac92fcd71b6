// Package api contains the request and response bodies of the epicli HTTP
// API. Version v1 is the only version.
package api

// LoadRequest is the JSON body of POST /api/dataset. Exactly one of
// Content and Path must be set; Path is relative to the data directory.
type LoadRequest struct {
	Content string `json:"content" validate:"required_without=Path,excluded_with=Path"`
	Path    string `json:"path" validate:"omitempty,max=512,datafile"`
	Source  string `json:"source" validate:"omitempty,max=128"`
}

// StatusSuccess is the Status of every successful Response.
const StatusSuccess = "success"

// Response wraps every successful JSON response.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// ExportResponse is the data of POST /api/dataset/export.
type ExportResponse struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}
