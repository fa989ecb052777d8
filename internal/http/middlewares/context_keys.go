package middlewares

// gin context keys shared by the middlewares and the handlers.
const (
	CtxRequestID = "request_id"
	CtxDraftID   = "draft_id"
)
