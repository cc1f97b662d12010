package httpapi

// Every endpoint responds with the respcode/description envelope the
// dashboards were built against, payload fields alongside:
// - respcode: 1200 success, 1201 system error
// - description: display name of the code
// - error: message text, system errors only
const (
	RespSuccessful  = 1200
	RespSystemError = 1201

	descSuccessful  = "Successful"
	descSystemError = "Error"
)

type envelope struct {
	Respcode    int    `json:"respcode"`
	Description string `json:"description"`
}

func ok() envelope {
	return envelope{Respcode: RespSuccessful, Description: descSuccessful}
}

type errorResult struct {
	envelope
	Error string `json:"error"`
}

func fail(message string) errorResult {
	return errorResult{
		envelope: envelope{Respcode: RespSystemError, Description: descSystemError},
		Error:    message,
	}
}
