package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

// NewSuccessResponseWithWarning reports a completed mutation whose
// persistence side effect failed. The caller's change is live in memory;
// the warning tells the user it may not survive a restart.
func NewSuccessResponseWithWarning(data interface{}, warning string) *Response {
	return &Response{
		Status:  "success",
		Warning: warning,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Respond wraps mutation results, downgrading a persistence failure to a
// warning on an otherwise successful response.
func Respond(s Store, data interface{}) *Response {
	if err := s.LastSaveErr(); err != nil {
		return NewSuccessResponseWithWarning(data, "changes kept in memory but could not be saved: "+err.Error())
	}
	return NewSuccessResponse(data)
}
