package entity

// APIResponse is the envelope for JSON API responses and for every error. The batch
// signature success responses are bare JSON values read directly by the signing page.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code string, message string) *APIResponse {
	return &APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}

// WithRequestID tags the response with the id assigned by the request id middleware
func (r *APIResponse) WithRequestID(id string) *APIResponse {
	r.RequestID = id
	return r
}
