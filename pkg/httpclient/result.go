package httpclient

// Result is the uniform outcome of an outbound call.
// Success implies Data is set; a failure carries Error and StatusCode and a zero Data.
type Result[T any] struct {
	Success    bool
	Data       T
	Error      string
	StatusCode int
}

func success[T any](data T, statusCode int) Result[T] {
	return Result[T]{Success: true, Data: data, StatusCode: statusCode}
}

func failure[T any](err error) Result[T] {
	upErr := toUpstreamError(err)
	return Result[T]{
		Success:    false,
		Error:      upErr.Message,
		StatusCode: upErr.StatusCode,
	}
}
